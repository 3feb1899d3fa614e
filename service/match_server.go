package service

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/beka-birhanu/cman/domain"
	"github.com/beka-birhanu/cman/game"
	"github.com/beka-birhanu/cman/game/maze"
	logger "github.com/beka-birhanu/cman/infrastruture/log"
	"github.com/beka-birhanu/cman/protocol"
	"github.com/beka-birhanu/cman/service/i"
	"github.com/beka-birhanu/cman/udp"
	"github.com/google/uuid"
)

const (
	defaultTickPeriod = 500 * time.Millisecond
	recordTimeout     = 5 * time.Second
)

var (
	ErrMissingSocket = errors.New("match server needs a socket")
	ErrMissingMap    = errors.New("match server needs a map")
)

// Phase is the lifecycle stage of a match.
type Phase int

const (
	PhaseWaitingForPlayers Phase = iota
	PhaseActive
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseWaitingForPlayers:
		return "waiting"
	case PhaseActive:
		return "active"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// Config holds the collaborators of a MatchServer.
type Config struct {
	Socket      i.DatagramSocket
	Map         *maze.Map
	Engine      i.RuleEngine // Defaults to a fresh game.Engine on Map.
	Logger      i.Logger
	Recorder    i.MatchRecorder // Optional. Notified once when the match ends.
	Observers   []i.MatchObserver
	TickPeriod  time.Duration
	IdleTimeout time.Duration // Seat eviction while waiting for players. Zero disables.
}

// MatchServer runs one authoritative match on a fixed tick.
//
// Everything except Status is owned by the goroutine calling Tick or Run.
type MatchServer struct {
	id          uuid.UUID
	socket      i.DatagramSocket
	engine      i.RuleEngine
	registry    *SessionRegistry
	logger      i.Logger
	recorder    i.MatchRecorder
	observers   []i.MatchObserver
	tickPeriod  time.Duration
	idleTimeout time.Duration

	phase     Phase
	pending   map[game.Role]game.Direction // last move per seat for the current tick
	tick      int64
	startedAt time.Time
	forfeit   bool
	fatal     error // first send failure

	status   domain.MatchStatus
	statusMu sync.RWMutex
}

// NewMatchServer creates a server waiting for players.
func NewMatchServer(c *Config) (*MatchServer, error) {
	if c.Socket == nil {
		return nil, ErrMissingSocket
	}
	if c.Map == nil && c.Engine == nil {
		return nil, ErrMissingMap
	}

	m := &MatchServer{
		id:          uuid.New(),
		socket:      c.Socket,
		engine:      c.Engine,
		registry:    NewSessionRegistry(),
		logger:      c.Logger,
		recorder:    c.Recorder,
		observers:   c.Observers,
		tickPeriod:  c.TickPeriod,
		idleTimeout: c.IdleTimeout,
		pending:     make(map[game.Role]game.Direction, 2),
	}

	if m.engine == nil {
		m.engine = game.NewEngine(c.Map)
	}
	if m.tickPeriod <= 0 {
		m.tickPeriod = defaultTickPeriod
	}
	if m.logger == nil {
		m.logger = logger.Nop()
	}

	m.publishStatus()
	return m, nil
}

// ID returns the match identifier.
func (m *MatchServer) ID() uuid.UUID {
	return m.id
}

// Phase returns the current phase.
func (m *MatchServer) Phase() Phase {
	return m.phase
}

// Registry exposes the session registry of the match.
func (m *MatchServer) Registry() *SessionRegistry {
	return m.registry
}

// Run ticks until the match is over, the socket fails or ctx is cancelled.
// A tick that overruns the period is followed immediately by the next one.
func (m *MatchServer) Run(ctx context.Context) error {
	m.logger.Info(fmt.Sprintf("match %s waiting for players, tick %s", m.id, m.tickPeriod))
	for {
		start := time.Now()
		done, err := m.Tick(start)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		wait := m.tickPeriod - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.logger.Info(fmt.Sprintf("match %s stopped: %s", m.id, ctx.Err()))
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Tick runs one server step: drain input, apply moves, broadcast and detect the end.
// done is true once the match is over.
func (m *MatchServer) Tick(now time.Time) (done bool, err error) {
	if m.phase == PhaseOver {
		return true, nil
	}
	m.tick++

	datagrams, drainErr := m.socket.Drain()
	for _, d := range datagrams {
		m.handleDatagram(d, now)
	}
	if drainErr != nil {
		return false, fmt.Errorf("drain socket: %w", drainErr)
	}

	m.evictIdle(now)

	if m.phase == PhaseActive {
		m.applyPending()
		m.broadcastState()
		if _, over := m.engine.Winner(); over {
			m.finish(now)
		}
	}
	clear(m.pending)
	m.publishStatus()

	if m.fatal != nil {
		return m.phase == PhaseOver, m.fatal
	}
	return m.phase == PhaseOver, nil
}

func (m *MatchServer) handleDatagram(d udp.Datagram, now time.Time) {
	frames, err := protocol.Decode(d.Payload)
	for _, f := range frames {
		m.handleFrame(d.Addr, f, now)
	}

	var te *protocol.TruncatedFrameError
	switch {
	case errors.As(err, &te) && te.Opcode == protocol.OpJoin:
		m.reject(d.Addr, ErrEmptyPayload)
	case errors.As(err, &te) && te.Opcode.ServerOnly():
		m.reject(d.Addr, ErrServerOpcode)
	case err != nil:
		m.logger.Debug(fmt.Sprintf("dropping rest of datagram from %s: %s", d.Addr, err))
	}

	m.registry.Touch(d.Addr, now)
}

func (m *MatchServer) handleFrame(addr netip.AddrPort, f protocol.Frame, now time.Time) {
	switch f := f.(type) {
	case protocol.Join:
		m.join(addr, f.Role, now)
	case protocol.Move:
		if err := m.move(addr, f.Direction); err != nil {
			m.reject(addr, err)
		}
	case protocol.Quit:
		m.quit(addr)
	default:
		m.reject(addr, ErrServerOpcode)
	}
}

func (m *MatchServer) join(addr netip.AddrPort, role game.Role, now time.Time) {
	res, err := m.registry.Join(addr, role)
	if err != nil {
		m.reject(addr, err)
		return
	}
	if res.Rejoined {
		m.logger.Debug(fmt.Sprintf("%s joined again as %s", addr, role))
		return
	}
	m.logger.Info(fmt.Sprintf("%s joined as %s", addr, role))

	if res.SeatsFilled && m.phase == PhaseWaitingForPlayers {
		m.phase = PhaseActive
		m.startedAt = now
		m.logger.Info(fmt.Sprintf("match %s started", m.id))
	}
}

func (m *MatchServer) move(addr netip.AddrPort, d game.Direction) error {
	s, ok := m.registry.Lookup(addr)
	if !ok {
		return ErrNotJoined
	}
	if !s.Role.IsPlayer() {
		return ErrNotAPlayer
	}
	if !d.Valid() {
		return ErrInvalidDirection
	}
	m.pending[s.Role] = d
	return nil
}

func (m *MatchServer) quit(addr netip.AddrPort) {
	s, ok := m.registry.Remove(addr)
	if !ok {
		m.logger.Debug(fmt.Sprintf("quit from unknown address %s", addr))
		return
	}
	delete(m.pending, s.Role)
	m.logger.Info(fmt.Sprintf("%s (%s) quit", addr, s.Role))

	if m.phase == PhaseActive && s.Role.IsPlayer() {
		if _, over := m.engine.Winner(); !over {
			m.forfeit = true
			m.engine.DeclareWinner(s.Role.Opponent())
		}
	}
}

func (m *MatchServer) reject(addr netip.AddrPort, err error) {
	code, ok := WireCode(err)
	if !ok {
		m.logger.Error(fmt.Sprintf("no wire code for error from %s: %s", addr, err))
		return
	}
	m.logger.Warning(fmt.Sprintf("rejecting request from %s: %s", addr, err))
	m.send(addr, protocol.Encode(protocol.Error{Code: code}))
}

func (m *MatchServer) evictIdle(now time.Time) {
	if m.idleTimeout <= 0 || m.phase != PhaseWaitingForPlayers {
		return
	}
	for _, s := range m.registry.Idle(now, m.idleTimeout) {
		m.registry.Remove(s.Addr)
		m.logger.Info(fmt.Sprintf("evicted idle %s from the %s seat", s.Addr, s.Role))
	}
}

// applyPending applies the Cman move before the Spirit move.
func (m *MatchServer) applyPending() {
	for _, role := range []game.Role{game.RoleCman, game.RoleSpirit} {
		d, ok := m.pending[role]
		if !ok {
			continue
		}
		if err := m.engine.ApplyMove(role, d); err != nil {
			m.logger.Debug(fmt.Sprintf("%s move %s rejected: %s", role, d, err))
		}
	}
}

// Snapshot builds the GameUpdate seen by role. Spectators are always blocked.
func (m *MatchServer) Snapshot(role game.Role) protocol.GameUpdate {
	cman, spirit := m.engine.Coordinates()
	attempts, _ := m.engine.Progress()
	return protocol.GameUpdate{
		Blocked:   !m.engine.CanMove(role),
		CmanRow:   byte(cman.Row),
		CmanCol:   byte(cman.Col),
		SpiritRow: byte(spirit.Row),
		SpiritCol: byte(spirit.Col),
		Attempts:  byte(attempts),
		Mask:      protocol.PackMask(m.engine.PointsAlive()),
	}
}

func (m *MatchServer) broadcastState() {
	for _, role := range []game.Role{game.RoleCman, game.RoleSpirit} {
		if s, ok := m.registry.Occupant(role); ok {
			m.send(s.Addr, protocol.Encode(m.Snapshot(role)))
		}
	}

	frame := protocol.Encode(m.Snapshot(game.RoleSpectator))
	for _, addr := range m.registry.Spectators() {
		m.send(addr, frame)
	}
	m.notify(frame)
}

func (m *MatchServer) finish(now time.Time) {
	winner, _ := m.engine.Winner()
	_, score := m.engine.Progress()
	captures := m.engine.Captures()

	frame := protocol.Encode(protocol.End{Winner: winner, Captures: byte(captures), Score: byte(score)})
	for _, addr := range m.registry.Addrs() {
		m.send(addr, frame)
	}
	m.notify(frame)

	m.phase = PhaseOver
	m.logger.Info(fmt.Sprintf("match %s over: %s wins, captures %d, score %d", m.id, winner, captures, score))
	m.record(&domain.MatchRecord{
		ID:         m.id,
		StartedAt:  m.startedAt,
		EndedAt:    now,
		Winner:     winner.String(),
		Captures:   captures,
		Score:      score,
		Forfeit:    m.forfeit,
		Spectators: len(m.registry.Spectators()),
		Ticks:      m.tick,
	})
}

func (m *MatchServer) record(r *domain.MatchRecord) {
	if m.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := m.recorder.Record(ctx, r); err != nil {
		m.logger.Error(fmt.Sprintf("recording match %s: %s", r.ID, err))
	}
}

func (m *MatchServer) notify(frame []byte) {
	for _, o := range m.observers {
		o.Observe(frame)
	}
}

func (m *MatchServer) send(addr netip.AddrPort, payload []byte) {
	if err := m.socket.SendTo(addr, payload); err != nil {
		m.logger.Error(fmt.Sprintf("error while writing to %s: %s", addr, err))
		if m.fatal == nil {
			m.fatal = fmt.Errorf("send to %s: %w", addr, err)
		}
	}
}

func (m *MatchServer) publishStatus() {
	cman, spirit := m.engine.Coordinates()
	attempts, score := m.engine.Progress()
	_, cmanSeated := m.registry.Occupant(game.RoleCman)
	_, spiritSeated := m.registry.Occupant(game.RoleSpirit)

	st := domain.MatchStatus{
		ID:           m.id,
		Phase:        m.phase.String(),
		Tick:         m.tick,
		CmanSeated:   cmanSeated,
		SpiritSeated: spiritSeated,
		Spectators:   len(m.registry.Spectators()),
		Cman:         domain.Position{Row: cman.Row, Col: cman.Col},
		Spirit:       domain.Position{Row: spirit.Row, Col: spirit.Col},
		Attempts:     attempts,
		Score:        score,
	}
	if w, ok := m.engine.Winner(); ok {
		st.Winner = w.String()
	}

	m.statusMu.Lock()
	m.status = st
	m.statusMu.Unlock()
}

// Status returns the latest published status. Safe for concurrent use.
func (m *MatchServer) Status() domain.MatchStatus {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return m.status
}

var _ i.MatchStatusProvider = &MatchServer{}
