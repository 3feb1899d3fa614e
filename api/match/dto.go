// Package matchapi exposes the running match, the match history and the scoreboard.
package matchapi

import "github.com/beka-birhanu/cman/domain"

// HistoryResponse lists finished matches, newest first.
type HistoryResponse struct {
	Matches []*domain.MatchRecord `json:"matches"`
}

// LimitQuery is the optional page size of list endpoints.
type LimitQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
