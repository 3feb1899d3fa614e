package udp

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"

	logger "github.com/beka-birhanu/cman/infrastruture/log"
)

// ServerOption configures a SocketManager.
type ServerOption func(*SocketManager)

// Custom error types
var (
	ErrSocketClosed            = errors.New("socket closed")
	ErrMaximumPayloadSizeLimit = errors.New("maximum payload size limit")
	ErrNoRemote                = errors.New("socket has no remote address")
)

const (
	defaultReadBufferSize int = 2048
	defaultQueueSize      int = 1024
)

// Logger is the logging surface the socket needs.
type Logger interface {
	Debug(string)
	Info(string)
	Warning(string)
	Error(string)
}

// Datagram is one received UDP payload and its sender.
type Datagram struct {
	Addr    netip.AddrPort
	Payload []byte
}

// SocketManager owns a UDP socket. A reader goroutine queues incoming datagrams
// so the owner can drain them without blocking.
type SocketManager struct {
	readBufferSize int            // Maximum accepted datagram size.
	queueSize      int            // Capacity of the datagram queue.
	conn           *net.UDPConn   // Socket.
	remote         netip.AddrPort // Peer of a dialed socket. Only its datagrams are queued.
	datagrams      chan Datagram  // Datagrams waiting for Drain.
	errs           chan error     // Fatal read error, at most one.
	logger         Logger         // Logger.
	closed         atomic.Bool    // Set by Close.
	stop           chan struct{}  // Closed to stop the reader.
	wg             sync.WaitGroup // Tracks the reader goroutine.
}

// Listen binds a server socket on addr and starts reading.
func Listen(addr netip.AddrPort, options ...ServerOption) (*SocketManager, error) {
	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(addr))
	if err != nil {
		return nil, err
	}
	return newSocketManager(conn, netip.AddrPort{}, options), nil
}

// Dial opens a client socket on an ephemeral port that talks to remote.
// Datagrams from any other address are dropped.
func Dial(remote netip.AddrPort, options ...ServerOption) (*SocketManager, error) {
	network := "udp4"
	if remote.Addr().Is6() && !remote.Addr().Is4In6() {
		network = "udp6"
	}
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return nil, err
	}
	return newSocketManager(conn, normalize(remote), options), nil
}

func newSocketManager(conn *net.UDPConn, remote netip.AddrPort, options []ServerOption) *SocketManager {
	s := &SocketManager{
		conn:   conn,
		remote: remote,
		errs:   make(chan error, 1),
		stop:   make(chan struct{}),
	}

	// Run optional configurations
	for _, opt := range options {
		opt(s)
	}

	if s.readBufferSize <= 0 {
		s.readBufferSize = defaultReadBufferSize
	}
	if s.queueSize <= 0 {
		s.queueSize = defaultQueueSize
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	s.datagrams = make(chan Datagram, s.queueSize)

	s.wg.Add(1)
	go s.serve()
	s.logger.Info(fmt.Sprintf("socket listening on udp address: %s", conn.LocalAddr()))
	return s
}

// serve reads datagrams until the socket is closed or fails.
func (s *SocketManager) serve() {
	defer s.wg.Done()
	for {
		buf := make([]byte, s.readBufferSize+1) // Intentionally create more space than allowed for checking
		n, addr, err := s.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error(fmt.Sprintf("error while reading from udp: %s", err))
			s.errs <- err
			return
		}
		if n > s.readBufferSize {
			s.logger.Warning(fmt.Sprintf("dropping datagram from %s: %s", addr, ErrMaximumPayloadSizeLimit))
			continue
		}

		addr = normalize(addr)
		if s.remote.IsValid() && addr != s.remote {
			s.logger.Debug(fmt.Sprintf("dropping datagram from unexpected address %s", addr))
			continue
		}

		select {
		case s.datagrams <- Datagram{Addr: addr, Payload: buf[:n]}:
		case <-s.stop:
			return
		}
	}
}

// Drain returns every queued datagram without blocking. A non-nil error is a
// fatal socket failure; datagrams queued before it are still returned.
func (s *SocketManager) Drain() ([]Datagram, error) {
	if s.closed.Load() {
		return nil, ErrSocketClosed
	}

	var out []Datagram
	for {
		select {
		case d := <-s.datagrams:
			out = append(out, d)
		default:
			select {
			case err := <-s.errs:
				s.errs <- err // keep reporting the failure on later drains
				return out, err
			default:
				return out, nil
			}
		}
	}
}

// SendTo writes payload to addr.
func (s *SocketManager) SendTo(addr netip.AddrPort, payload []byte) error {
	if s.closed.Load() {
		return ErrSocketClosed
	}
	_, err := s.conn.WriteToUDPAddrPort(payload, addr)
	return err
}

// Send writes payload to the remote of a dialed socket.
func (s *SocketManager) Send(payload []byte) error {
	if !s.remote.IsValid() {
		return ErrNoRemote
	}
	return s.SendTo(s.remote, payload)
}

// LocalAddr returns the bound address.
func (s *SocketManager) LocalAddr() netip.AddrPort {
	if a, ok := s.conn.LocalAddr().(*net.UDPAddr); ok {
		return normalize(a.AddrPort())
	}
	return netip.AddrPort{}
}

// Close stops the reader and closes the socket. It is safe to call more than once.
func (s *SocketManager) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.logger.Info("socket closing")
	close(s.stop)
	err := s.conn.Close()
	s.wg.Wait()
	return err
}

// normalize unmaps IPv4-mapped IPv6 addresses so one peer always has one key.
func normalize(a netip.AddrPort) netip.AddrPort {
	return netip.AddrPortFrom(a.Addr().Unmap(), a.Port())
}

// ServerWithReadBufferSize sets the read buffer size option
func ServerWithReadBufferSize(i int) ServerOption {
	return func(s *SocketManager) {
		s.readBufferSize = i
	}
}

// ServerWithQueueSize sets how many datagrams may wait for Drain.
func ServerWithQueueSize(i int) ServerOption {
	return func(s *SocketManager) {
		s.queueSize = i
	}
}

// ServerWithLogger sets the logger
func ServerWithLogger(l Logger) ServerOption {
	return func(s *SocketManager) {
		s.logger = l
	}
}
