// Package domain holds the records shared between the match server, storage and the HTTP surface.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchRecord is the outcome of one finished match.
type MatchRecord struct {
	ID         uuid.UUID `json:"id" bson:"_id" msgpack:"id"`
	StartedAt  time.Time `json:"started_at" bson:"started_at" msgpack:"started_at"`
	EndedAt    time.Time `json:"ended_at" bson:"ended_at" msgpack:"ended_at"`
	Winner     string    `json:"winner" bson:"winner" msgpack:"winner"`
	Captures   int       `json:"captures" bson:"captures" msgpack:"captures"`
	Score      int       `json:"score" bson:"score" msgpack:"score"`
	Forfeit    bool      `json:"forfeit" bson:"forfeit" msgpack:"forfeit"` // true when a player quit an active match
	Spectators int       `json:"spectators" bson:"spectators" msgpack:"spectators"`
	Ticks      int64     `json:"ticks" bson:"ticks" msgpack:"ticks"`
}

// Duration returns how long the match was active.
func (m *MatchRecord) Duration() time.Duration {
	return m.EndedAt.Sub(m.StartedAt)
}

// Scoreboard aggregates finished matches.
type Scoreboard struct {
	CmanWins   int64          `json:"cman_wins"`
	SpiritWins int64          `json:"spirit_wins"`
	BestScore  int            `json:"best_score"`
	Recent     []*MatchRecord `json:"recent"`
}

// Position is a row/column pair as exposed over HTTP.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// MatchStatus is a point-in-time view of the running match.
type MatchStatus struct {
	ID           uuid.UUID `json:"id"`
	Phase        string    `json:"phase"`
	Tick         int64     `json:"tick"`
	CmanSeated   bool      `json:"cman_seated"`
	SpiritSeated bool      `json:"spirit_seated"`
	Spectators   int       `json:"spectators"`
	Cman         Position  `json:"cman"`
	Spirit       Position  `json:"spirit"`
	Attempts     int       `json:"attempts"`
	Score        int       `json:"score"`
	Winner       string    `json:"winner,omitempty"`
}
