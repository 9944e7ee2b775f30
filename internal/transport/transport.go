// Package transport abstracts the connection-oriented datagram transport
// the protocol core depends on. The core never touches a net.Conn
// directly; it only sees this interface, matching the spec's treatment of
// the transport as an external collaborator specified by the interface
// alone.
package transport

import (
	"errors"
	"time"
)

// ErrTimeout is returned by Recv when no packet arrives within the
// requested timeout. It is not a transport failure.
var ErrTimeout = errors.New("transport: receive timed out")

// Transport is the contract the danp-ftp core consumes: connect, send,
// timed receive, close. Open is implicit in the constructor of a concrete
// Transport (e.g. transport.DialTCP), since Go has no separate
// allocate-then-open step the way the C handle does.
type Transport interface {
	// Send writes exactly one packet's worth of bytes. A short write is
	// reported as an error; callers must not assume partial delivery.
	Send(buf []byte) error

	// Recv blocks for at most timeout waiting for one whole packet and
	// copies it into buf, returning the number of bytes received.
	// ErrTimeout is returned if nothing arrives in time.
	Recv(buf []byte, timeout time.Duration) (int, error)

	// Close releases the underlying connection. Idempotent.
	Close() error
}
