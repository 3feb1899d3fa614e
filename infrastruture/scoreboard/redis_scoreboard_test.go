package scoreboard

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/beka-birhanu/cman/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEncoding(t *testing.T) {
	m := &domain.MatchRecord{
		ID:         uuid.New(),
		StartedAt:  time.Unix(1_700_000_000, 0),
		EndedAt:    time.Unix(1_700_000_090, 500),
		Winner:     "spirit",
		Captures:   3,
		Score:      12,
		Spectators: 2,
		Ticks:      180,
	}

	b, err := EncodeRecord(m)
	require.NoError(t, err)

	got, err := DecodeRecord(b)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.Winner, got.Winner)
	assert.Equal(t, m.Captures, got.Captures)
	assert.Equal(t, m.Ticks, got.Ticks)
	assert.True(t, m.EndedAt.Equal(got.EndedAt))
	assert.Equal(t, 90*time.Second+500, got.Duration())

	_, err = DecodeRecord([]byte{0xc1})
	assert.Error(t, err)
}

func TestOptionsDefaults(t *testing.T) {
	s := NewRedisScoreboard(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), nil)
	assert.Equal(t, "cman:wins", s.key(winsKeyFmt))
	assert.Equal(t, int64(defaultKeepRecent), s.opts.KeepRecent)

	s = NewRedisScoreboard(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), &Options{Prefix: "test", KeepRecent: 2})
	assert.Equal(t, "test:best:lock", s.key(lockKeyFmt))
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, int64(7), parseCount("7"))
	assert.Equal(t, int64(0), parseCount(""))
	assert.Equal(t, int64(0), parseCount("x"))
}

// TestRedisScoreboard runs against a live server when REDIS_ADDR is set.
func TestRedisScoreboard(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	prefix := "cman_test_" + uuid.NewString()
	s := NewRedisScoreboard(client, &Options{Prefix: prefix, KeepRecent: 2})
	defer client.Del(ctx, s.key(winsKeyFmt), s.key(bestKeyFmt), s.key(recentKeyFmt))

	base := time.Now()
	for n, r := range []*domain.MatchRecord{
		{ID: uuid.New(), EndedAt: base, Winner: "cman", Score: 40},
		{ID: uuid.New(), EndedAt: base.Add(time.Second), Winner: "spirit", Score: 10},
		{ID: uuid.New(), EndedAt: base.Add(2 * time.Second), Winner: "spirit", Score: 22},
	} {
		require.NoError(t, s.Record(ctx, r), "record %d", n)
	}

	board, err := s.Scores(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), board.CmanWins)
	assert.Equal(t, int64(2), board.SpiritWins)
	assert.Equal(t, 40, board.BestScore)
	require.Len(t, board.Recent, 2, "recent list is trimmed")
	assert.Equal(t, 22, board.Recent[0].Score)
	assert.Equal(t, 10, board.Recent[1].Score)
}
