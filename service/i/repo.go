package i

import (
	"context"

	"github.com/beka-birhanu/cman/domain"
)

// MatchRepo defines the interface for match history persistence.
type MatchRepo interface {
	// Save inserts a finished match.
	Save(ctx context.Context, m *domain.MatchRecord) error

	// Recent returns at most limit matches, newest first.
	Recent(ctx context.Context, limit int) ([]*domain.MatchRecord, error)
}
