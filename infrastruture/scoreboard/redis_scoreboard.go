// Package scoreboard keeps win counts, the best score and recent results in Redis.
package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/beka-birhanu/cman/domain"
	"github.com/beka-birhanu/cman/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	defaultPrefix     = "cman"
	defaultKeepRecent = 50

	winsKeyFmt   = "%s:wins"
	bestKeyFmt   = "%s:best"
	recentKeyFmt = "%s:recent"
	lockKeyFmt   = "%s:best:lock"
)

// Options tunes a RedisScoreboard.
type Options struct {
	Prefix     string        // Key prefix.
	KeepRecent int64         // Number of results kept in the recent list.
	TTL        time.Duration // Expiration of the recent list. Zero keeps it forever.
}

// RedisScoreboard aggregates finished matches in Redis.
type RedisScoreboard struct {
	client *redis.Client
	locker *redsync.Redsync
	opts   Options
}

// NewRedisScoreboard initializes a RedisScoreboard with the provided Redis client.
func NewRedisScoreboard(client *redis.Client, opts *Options) *RedisScoreboard {
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.Prefix == "" {
		o.Prefix = defaultPrefix
	}
	if o.KeepRecent <= 0 {
		o.KeepRecent = defaultKeepRecent
	}

	return &RedisScoreboard{
		client: client,
		locker: redsync.New(goredis.NewPool(client)),
		opts:   o,
	}
}

// Record adds a finished match to the scoreboard.
func (s *RedisScoreboard) Record(ctx context.Context, m *domain.MatchRecord) error {
	if err := s.client.HIncrBy(ctx, s.key(winsKeyFmt), m.Winner, 1).Err(); err != nil {
		return fmt.Errorf("incrementing wins: %w", err)
	}

	if err := s.raiseBest(ctx, m.Score); err != nil {
		return err
	}

	payload, err := EncodeRecord(m)
	if err != nil {
		return err
	}

	recentKey := s.key(recentKeyFmt)
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, recentKey, redis.Z{Score: float64(m.EndedAt.UnixNano()), Member: payload})
	pipe.ZRemRangeByRank(ctx, recentKey, 0, -s.opts.KeepRecent-1)
	if s.opts.TTL > 0 {
		pipe.Expire(ctx, recentKey, s.opts.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing recent result: %w", err)
	}
	return nil
}

// raiseBest replaces the best score when score beats it.
func (s *RedisScoreboard) raiseBest(ctx context.Context, score int) error {
	mutex := s.locker.NewMutex(s.key(lockKeyFmt))
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("obtaining best score lock: %w", err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	best, err := s.best(ctx)
	if err != nil {
		return err
	}
	if score <= best {
		return nil
	}
	return s.client.Set(ctx, s.key(bestKeyFmt), score, 0).Err()
}

func (s *RedisScoreboard) best(ctx context.Context) (int, error) {
	best, err := s.client.Get(ctx, s.key(bestKeyFmt)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return best, err
}

// Scores returns the win counts, the best score and up to recent latest results.
func (s *RedisScoreboard) Scores(ctx context.Context, recent int) (*domain.Scoreboard, error) {
	wins, err := s.client.HGetAll(ctx, s.key(winsKeyFmt)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading wins: %w", err)
	}

	best, err := s.best(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading best score: %w", err)
	}

	board := &domain.Scoreboard{
		CmanWins:   parseCount(wins["cman"]),
		SpiritWins: parseCount(wins["spirit"]),
		BestScore:  best,
		Recent:     make([]*domain.MatchRecord, 0),
	}
	if recent <= 0 {
		return board, nil
	}

	raw, err := s.client.ZRevRange(ctx, s.key(recentKeyFmt), 0, int64(recent-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading recent results: %w", err)
	}
	for _, r := range raw {
		m, err := DecodeRecord([]byte(r))
		if err != nil {
			return nil, err
		}
		board.Recent = append(board.Recent, m)
	}
	return board, nil
}

func (s *RedisScoreboard) key(format string) string {
	return fmt.Sprintf(format, s.opts.Prefix)
}

func parseCount(v string) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// EncodeRecord serializes a match record for the recent list.
func EncodeRecord(m *domain.MatchRecord) ([]byte, error) {
	b, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding match record: %w", err)
	}
	return b, nil
}

// DecodeRecord is the inverse of EncodeRecord.
func DecodeRecord(b []byte) (*domain.MatchRecord, error) {
	var m domain.MatchRecord
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decoding match record: %w", err)
	}
	return &m, nil
}

var _ i.Scoreboard = &RedisScoreboard{}
