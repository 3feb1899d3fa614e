package i

import (
	"net/netip"

	"github.com/beka-birhanu/cman/udp"
)

// DatagramSocket is the server side of the UDP transport.
type DatagramSocket interface {
	// Drain returns every datagram received since the last call without blocking.
	// A non-nil error means the socket is no longer usable.
	Drain() ([]udp.Datagram, error)

	// SendTo writes one datagram to addr.
	SendTo(addr netip.AddrPort, payload []byte) error
}
