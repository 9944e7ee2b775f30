// Package danpftp is the protocol core: a session handle, its state
// machine, and the transmit/receive engines built on top of the packet
// codec and a Transport. It depends only on the small collaborator
// interfaces internal/transport, internal/logging and internal/metrics
// define, never on a concrete logging/metrics backend; the one concrete
// transport it uses is the TCP dial inside Init.
package danpftp

import (
	"time"

	"github.com/danp-project/danp-ftp/internal/logging"
	"github.com/danp-project/danp-ftp/internal/metrics"
	"github.com/danp-project/danp-ftp/internal/protocol"
	"github.com/danp-project/danp-ftp/internal/transport"
)

// defaultMaxPacketSize bounds the handle-resident buffers; it is not a
// wire constant, only this reference implementation's compile-time
// allocation choice.
const defaultMaxPacketSize = 2048

// DefaultPort is the reserved FTP service port a Session's destination is
// assumed to listen on. Spec.md leaves the exact value to the
// implementation; callers are free to connect to any address and still
// treat it as "the FTP service port" for a given dst_node.
const DefaultPort = 8021

// Session exclusively owns a Transport while initialized. It holds the
// destination node id, current sequence number, advisory state,
// cumulative byte counter and the is_initialized flag spec.md requires,
// plus the handle-resident buffers the transmit/receive engines reuse
// across calls so the protocol path allocates no memory per packet.
type Session struct {
	transport   transport.Transport
	dstNode     uint16
	seq         uint16
	state       State
	totalBytes  int
	initialized bool

	logger  logging.Logger
	metrics metrics.Collector

	maxPayload int
	sendBuf    []byte
	recvBuf    []byte
	cmdScratch [128]byte
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithLogger attaches a diagnostics sink. The zero value is logging.Noop().
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics attaches a metrics sink. The zero value is metrics.Noop().
func WithMetrics(m metrics.Collector) Option {
	return func(s *Session) { s.metrics = m }
}

// WithMaxPacketSize overrides the handle-resident buffer size (and
// therefore MAX_PAYLOAD). The default is defaultMaxPacketSize.
func WithMaxPacketSize(n int) Option {
	return func(s *Session) { s.maxPayload = protocol.MaxPayload(n) }
}

func newSession(t transport.Transport, dstNode uint16, opts ...Option) *Session {
	s := &Session{
		transport:   t,
		dstNode:     dstNode,
		state:       StateIdle,
		initialized: true,
		logger:      logging.Noop(),
		metrics:     metrics.Noop(),
		maxPayload:  protocol.MaxPayload(defaultMaxPacketSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	bufSize := protocol.HeaderSize + s.maxPayload
	s.sendBuf = make([]byte, bufSize)
	s.recvBuf = make([]byte, bufSize)
	return s
}

// Init dials addr within dialTimeout and, on success, returns an
// initialized Session connected to dstNode. On dial failure the Session is
// never constructed and StatusConnectionFailed is returned, matching
// spec.md's "init clears the handle, opens a stream socket, connects... on
// any failure returns CONNECTION_FAILED and leaves the handle
// uninitialized (socket closed if opened)" — here, nothing is ever
// half-opened because the failed dial never produces a Transport to close.
func Init(addr string, dstNode uint16, dialTimeout time.Duration, opts ...Option) (*Session, error) {
	t, err := transport.DialTCP(addr, dialTimeout)
	if err != nil {
		return nil, statusErr(StatusConnectionFailed, "connect to peer failed", err)
	}
	return newSession(t, dstNode, opts...), nil
}

// NewWithTransport wraps an already-connected Transport (e.g. one half of
// transport.NewPipePair, or a connection accepted by a reference peer) as
// an initialized Session. Use this when the caller, not Session, owns the
// dial/accept step.
func NewWithTransport(t transport.Transport, dstNode uint16, opts ...Option) *Session {
	return newSession(t, dstNode, opts...)
}

// Close is the deinit operation: a no-op on an already-uninitialized
// Session, otherwise it closes the owned Transport, clears
// is_initialized, and resets state to IDLE. Idempotent.
func (s *Session) Close() error {
	if !s.initialized {
		return nil
	}
	err := s.transport.Close()
	s.initialized = false
	s.state = StateIdle
	return err
}

// State returns the session's current advisory state.
func (s *Session) State() State { return s.state }

// TotalBytesTransferred returns the cumulative payload bytes the
// callback accepted/produced during the most recent transfer.
func (s *Session) TotalBytesTransferred() int { return s.totalBytes }

// SequenceNumber returns the session's sequence counter for the most
// recent transfer. It is set to 1 after the handshake and incremented
// after each accepted DATA chunk, so after K chunks it is 1+K, one past
// the last DATA sequence number used on the wire.
func (s *Session) SequenceNumber() uint16 { return s.seq }

func (s *Session) reset() {
	s.seq = 0
	s.totalBytes = 0
	s.state = StateConnecting
}

func (s *Session) requireInitialized() error {
	if s == nil || !s.initialized {
		return statusErr(StatusInvalidParam, "session is not initialized", nil)
	}
	return nil
}
