package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/danp-project/danp-ftp/internal/protocol"
)

// TCPTransport is a connection-oriented Transport over a real net.Conn.
// Each packet is self-delimiting (the header's payload_length says how
// many more bytes follow), so no extra length-prefix framing is needed on
// top of TCP's byte stream — Recv simply reads HeaderSize bytes, then
// exactly payload_length more.
//
// Grounded on the teacher's clientudp.transferOnce: dial, then set a read
// deadline before every receive. Socket buffer sizes are left at the
// system defaults.
type TCPTransport struct {
	conn net.Conn
}

// DialTCP connects to node (a "host:port" style address in this reference
// implementation, since the spec's numeric node id is resolved to a real
// network address by the caller) within dialTimeout.
func DialTCP(addr string, dialTimeout time.Duration) (*TCPTransport, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return &TCPTransport{conn: conn}, nil
}

// NewTCPTransport wraps an already-connected net.Conn (used by the
// reference peer, which accepts rather than dials).
func NewTCPTransport(conn net.Conn) *TCPTransport {
	return &TCPTransport{conn: conn}
}

func (t *TCPTransport) Send(buf []byte) error {
	n, err := t.conn.Write(buf)
	if err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("transport: short send: wrote %d of %d bytes", n, len(buf))
	}
	return nil
}

func (t *TCPTransport) Recv(buf []byte, timeout time.Duration) (int, error) {
	if len(buf) < protocol.HeaderSize {
		return 0, fmt.Errorf("transport: recv buffer smaller than header")
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, fmt.Errorf("transport: set deadline: %w", err)
	}

	if _, err := io.ReadFull(t.conn, buf[:protocol.HeaderSize]); err != nil {
		if isTimeout(err) {
			return 0, ErrTimeout
		}
		return 0, fmt.Errorf("transport: recv header: %w", err)
	}

	payloadLen := int(binary.LittleEndian.Uint16(buf[4:6]))
	total := protocol.HeaderSize + payloadLen
	if total > len(buf) {
		return 0, fmt.Errorf("transport: recv buffer too small for payload_length %d", payloadLen)
	}
	if payloadLen > 0 {
		if _, err := io.ReadFull(t.conn, buf[protocol.HeaderSize:total]); err != nil {
			if isTimeout(err) {
				return 0, ErrTimeout
			}
			return 0, fmt.Errorf("transport: recv payload: %w", err)
		}
	}
	return total, nil
}

func (t *TCPTransport) Close() error {
	if err := t.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
