package i

import (
	"context"

	"github.com/beka-birhanu/cman/domain"
)

// MatchRecorder is notified once when a match ends.
type MatchRecorder interface {
	Record(ctx context.Context, m *domain.MatchRecord) error
}

// Scoreboard aggregates match outcomes.
type Scoreboard interface {
	MatchRecorder
	Scores(ctx context.Context, recent int) (*domain.Scoreboard, error)
}
