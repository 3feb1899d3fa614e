// Package client implements the Cman terminal client: it joins a server,
// reconciles GameUpdate frames into a local grid and forwards keys as moves.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/cman/game"
	"github.com/beka-birhanu/cman/game/maze"
	logger "github.com/beka-birhanu/cman/infrastruture/log"
	"github.com/beka-birhanu/cman/protocol"
	"github.com/beka-birhanu/cman/service/i"
	"github.com/beka-birhanu/cman/udp"
)

const (
	defaultTickPeriod = 500 * time.Millisecond
	defaultJoinRetry  = 4

	// Exit codes.
	ExitOK    = 0
	ExitError = 1
)

var (
	ErrMissingSocket = errors.New("client needs a socket")
	ErrMissingMap    = errors.New("client needs a map")
	ErrInvalidRole   = errors.New("invalid role")
)

// Socket is the client side of the UDP transport.
type Socket interface {
	Drain() ([]udp.Datagram, error)
	Send(payload []byte) error
}

// Result is how a client run ended.
type Result struct {
	Code    int
	Message string
}

// Config holds the collaborators of a Client.
type Config struct {
	Socket     Socket
	Map        *maze.Map
	Role       game.Role
	Renderer   Renderer
	Keys       *KeySlot
	Logger     i.Logger
	TickPeriod time.Duration
	JoinRetry  int // Ticks between Join resends until the server answers.
}

// Client runs one player or watcher session.
type Client struct {
	socket     Socket
	role       game.Role
	reconciler *Reconciler
	keys       *KeySlot
	logger     i.Logger
	tickPeriod time.Duration
	joinRetry  int

	ticks int
	heard bool // any frame received from the server
}

// New creates a client.
func New(c *Config) (*Client, error) {
	if c.Socket == nil {
		return nil, ErrMissingSocket
	}
	if c.Map == nil {
		return nil, ErrMissingMap
	}
	if !c.Role.Valid() {
		return nil, ErrInvalidRole
	}

	cl := &Client{
		socket:     c.Socket,
		role:       c.Role,
		reconciler: NewReconciler(c.Map, c.Role.String(), c.Renderer),
		keys:       c.Keys,
		logger:     c.Logger,
		tickPeriod: c.TickPeriod,
		joinRetry:  c.JoinRetry,
	}
	if cl.keys == nil {
		cl.keys = &KeySlot{}
	}
	if cl.logger == nil {
		cl.logger = logger.Nop()
	}
	if cl.tickPeriod <= 0 {
		cl.tickPeriod = defaultTickPeriod
	}
	if cl.joinRetry <= 0 {
		cl.joinRetry = defaultJoinRetry
	}
	return cl, nil
}

// Reconciler exposes the local match state.
func (c *Client) Reconciler() *Reconciler {
	return c.reconciler
}

// Run joins the server and ticks until the match ends, the user quits or ctx is cancelled.
func (c *Client) Run(ctx context.Context) Result {
	if err := c.join(); err != nil {
		return Result{Code: ExitError, Message: fmt.Sprintf("sending join: %s", err)}
	}

	for {
		start := time.Now()
		if res, done := c.Tick(); done {
			return res
		}

		wait := c.tickPeriod - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = c.socket.Send(protocol.Encode(protocol.Quit{}))
			return Result{Code: ExitOK, Message: "interrupted"}
		case <-timer.C:
		}
	}
}

// Tick handles every received frame and then the pending key.
func (c *Client) Tick() (Result, bool) {
	c.ticks++
	if !c.heard && c.ticks%c.joinRetry == 0 {
		c.logger.Debug("no answer from server, sending join again")
		if err := c.join(); err != nil {
			c.logger.Warning(fmt.Sprintf("resending join: %s", err))
		}
	}

	datagrams, err := c.socket.Drain()
	for _, d := range datagrams {
		if res, done := c.handleDatagram(d.Payload); done {
			return res, true
		}
	}
	if err != nil {
		c.logger.Error(fmt.Sprintf("socket failure: %s", err))
		return Result{Code: ExitOK, Message: "Error encountered with socket, exiting"}, true
	}

	return c.handleKey()
}

func (c *Client) handleDatagram(payload []byte) (Result, bool) {
	frames, err := protocol.Decode(payload)
	for _, f := range frames {
		c.heard = true
		switch f := f.(type) {
		case protocol.GameUpdate:
			c.reconciler.Apply(f)
		case protocol.End:
			return Result{Code: ExitOK, Message: EndMessage(f)}, true
		case protocol.Error:
			if !c.reconciler.Started() {
				return Result{Code: ExitError, Message: f.Code.Message()}, true
			}
			c.logger.Warning(fmt.Sprintf("ignoring server error after start: %s", f.Code.Message()))
		default:
			c.logger.Debug(fmt.Sprintf("ignoring %s frame from server", f.Opcode()))
		}
	}
	if err != nil {
		c.logger.Debug(fmt.Sprintf("dropping rest of datagram: %s", err))
	}
	return Result{}, false
}

func (c *Client) handleKey() (Result, bool) {
	key := c.keys.Take()
	if key == KeyQuit {
		if err := c.socket.Send(protocol.Encode(protocol.Quit{})); err != nil {
			c.logger.Warning(fmt.Sprintf("sending quit: %s", err))
		}
		return Result{Code: ExitOK, Message: "quit"}, true
	}

	d, ok := key.Direction()
	if !ok || !c.role.IsPlayer() || !c.reconciler.CanMove() {
		return Result{}, false
	}
	if err := c.socket.Send(protocol.Encode(protocol.Move{Direction: d})); err != nil {
		c.logger.Warning(fmt.Sprintf("sending move: %s", err))
	}
	return Result{}, false
}

func (c *Client) join() error {
	return c.socket.Send(protocol.Encode(protocol.Join{Role: c.role}))
}

// EndMessage is the text printed when the match ends.
func EndMessage(f protocol.End) string {
	winner := "Spirit"
	if f.Winner == game.RoleCman {
		winner = "Cman"
	}
	return fmt.Sprintf("GAME OVER\n The winner is: %s\nCman got captured: %d times\nScore: %d", winner, f.Captures, f.Score)
}
