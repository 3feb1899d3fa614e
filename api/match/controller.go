package matchapi

import (
	"context"
	"net/http"
	"time"

	"github.com/beka-birhanu/cman/api/i"
	service_i "github.com/beka-birhanu/cman/service/i"
	"github.com/gin-gonic/gin"
)

const (
	defaultLimit   = 20
	requestTimeout = 2 * time.Second
)

// Controller serves match status, history and scores.
type Controller struct {
	status     service_i.MatchStatusProvider
	history    service_i.MatchRepo  // nil when history is disabled
	scoreboard service_i.Scoreboard // nil when the scoreboard is disabled
	limit      int
}

// Config holds the dependencies of a Controller.
type Config struct {
	Status       service_i.MatchStatusProvider
	History      service_i.MatchRepo
	Scoreboard   service_i.Scoreboard
	DefaultLimit int
}

// NewController initializes a Controller.
func NewController(c Config) *Controller {
	limit := c.DefaultLimit
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Controller{
		status:     c.Status,
		history:    c.History,
		scoreboard: c.Scoreboard,
		limit:      limit,
	}
}

var _ i.Controller = &Controller{}

// RegisterPublic registers public routes.
func (c *Controller) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/match", c.matchStatus)
	route.GET("/matches", c.matchHistory)
	route.GET("/scores", c.scores)
}

// matchStatus returns the running match.
func (c *Controller) matchStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.status.Status())
}

// matchHistory returns recent finished matches.
func (c *Controller) matchHistory(ctx *gin.Context) {
	if c.history == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "match history is disabled"})
		return
	}

	limit, ok := c.bindLimit(ctx)
	if !ok {
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	matches, err := c.history.Recent(timeoutCtx, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading match history"})
		return
	}

	ctx.JSON(http.StatusOK, &HistoryResponse{Matches: matches})
}

// scores returns the scoreboard.
func (c *Controller) scores(ctx *gin.Context) {
	if c.scoreboard == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "scoreboard is disabled"})
		return
	}

	limit, ok := c.bindLimit(ctx)
	if !ok {
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	board, err := c.scoreboard.Scores(timeoutCtx, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading scores"})
		return
	}

	ctx.JSON(http.StatusOK, board)
}

func (c *Controller) bindLimit(ctx *gin.Context) (int, bool) {
	var q LimitQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	if q.Limit == 0 {
		return c.limit, true
	}
	return q.Limit, true
}
