// Package peer is a minimal reference implementation of the wire
// protocol's server side. Spec.md explicitly scopes the peer out of the
// core (its behavior is described only insofar as it constrains the wire
// protocol); this package exists solely so internal/danpftp is testable
// end-to-end and so cmd/danp-peer has something to run, not as a
// production file server.
//
// Grounded on iLukSbr.../internal/serverudp/serverudp.go's
// fileEntry/handleREQ/handleNACK/packetLoop shape, re-speaking
// danp-ftp's COMMAND/RESPONSE/DATA/ACK/NACK protocol instead of the
// teacher's UDP control-message set.
package peer

import (
	"errors"
	"sync"
	"time"

	"github.com/danp-project/danp-ftp/internal/logging"
	"github.com/danp-project/danp-ftp/internal/metrics"
	"github.com/danp-project/danp-ftp/internal/protocol"
	"github.com/danp-project/danp-ftp/internal/transport"
)

// FileStore is the storage collaborator a Peer reads from and writes to.
type FileStore interface {
	Read(fileID string) (data []byte, ok bool)
	Write(fileID string, data []byte) error
}

// MemStore is an in-memory FileStore, grounded on serverudp.go's
// map-backed fileEntry table.
type MemStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemStore builds an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

// Seed preloads a file, for tests and demos.
func (m *MemStore) Seed(fileID string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[fileID] = append([]byte(nil), data...)
}

func (m *MemStore) Read(fileID string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.files[fileID]
	return d, ok
}

func (m *MemStore) Write(fileID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[fileID] = append([]byte(nil), data...)
	return nil
}

// Peer serves one connection's worth of danp-ftp commands against a
// FileStore.
type Peer struct {
	store      FileStore
	maxPayload int
	chunkSize  int
	timeout    time.Duration
	maxRetries int
	logger     logging.Logger
	metrics    metrics.Collector
}

// Option configures a Peer at construction time.
type Option func(*Peer)

func WithChunkSize(n int) Option             { return func(p *Peer) { p.chunkSize = n } }
func WithTimeout(d time.Duration) Option     { return func(p *Peer) { p.timeout = d } }
func WithMaxRetries(n int) Option            { return func(p *Peer) { p.maxRetries = n } }
func WithLogger(l logging.Logger) Option     { return func(p *Peer) { p.logger = l } }
func WithMetrics(m metrics.Collector) Option { return func(p *Peer) { p.metrics = m } }

// New builds a Peer backed by store.
func New(store FileStore, maxPayload int, opts ...Option) *Peer {
	p := &Peer{
		store:      store,
		maxPayload: maxPayload,
		chunkSize:  64,
		timeout:    5 * time.Second,
		maxRetries: 3,
		logger:     logging.Noop(),
		metrics:    metrics.Noop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Serve handles exactly one COMMAND over t and drives the matching
// DATA/ACK/NACK exchange through to completion, then returns. Callers
// loop calling Serve per accepted connection (one command per connection
// in this reference implementation, matching the non-goal of
// multi-session multiplexing on one handle).
func (p *Peer) Serve(t transport.Transport) error {
	buf := make([]byte, protocol.HeaderSize+p.maxPayload)

	h, payload, err := p.recv(t, buf)
	if err != nil {
		return err
	}
	if h.Type != protocol.TypeCommand {
		return errors.New("peer: expected COMMAND packet")
	}
	opcode, fileID, err := protocol.DecodeCommand(payload)
	if err != nil {
		return err
	}

	switch opcode {
	case protocol.OpRead:
		return p.serveRead(t, buf, string(fileID))
	case protocol.OpWrite:
		return p.serveWrite(t, buf, string(fileID))
	default:
		return p.sendResponse(t, buf, protocol.RespError)
	}
}

func (p *Peer) serveRead(t transport.Transport, buf []byte, fileID string) error {
	data, ok := p.store.Read(fileID)
	if !ok {
		return p.sendResponse(t, buf, protocol.RespFileNotFound)
	}
	if err := p.sendResponse(t, buf, protocol.RespOK); err != nil {
		return err
	}

	seq := uint16(1)
	offset := 0
	for offset < len(data) {
		end := offset + p.chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]
		more := end < len(data)
		flags := uint8(0)
		if offset == 0 {
			flags |= protocol.FlagFirstChunk
		}
		if !more {
			flags |= protocol.FlagLastChunk
		}

		acked := false
		for attempt := 0; attempt < p.maxRetries; attempt++ {
			if attempt > 0 {
				p.metrics.AddRetransmission()
			}
			if err := p.send(t, buf, protocol.TypeData, flags, seq, chunk); err != nil {
				continue
			}
			p.metrics.AddSegmentSent()
			ah, _, err := p.recv(t, buf)
			if err != nil {
				continue
			}
			if ah.Type == protocol.TypeACK && ah.SequenceNum == seq {
				acked = true
				break
			}
			if ah.Type == protocol.TypeNACK {
				p.metrics.AddNackReceived()
			}
		}
		if !acked {
			return errors.New("peer: client never acked chunk")
		}
		p.metrics.AddBytesSent(len(chunk))
		offset = end
		seq++
	}
	return nil
}

func (p *Peer) serveWrite(t transport.Transport, buf []byte, fileID string) error {
	if err := p.sendResponse(t, buf, protocol.RespOK); err != nil {
		return err
	}

	var received []byte
	seq := uint16(1)
	for {
		h, payload, err := p.recv(t, buf)
		if err != nil {
			return err
		}
		if h.Type != protocol.TypeData || h.SequenceNum != seq {
			if err := p.sendControl(t, buf, protocol.TypeNACK, seq); err != nil {
				return err
			}
			continue
		}
		received = append(received, payload...)
		p.metrics.AddSegmentReceived()
		p.metrics.AddBytesReceived(len(payload))
		more := h.Flags&protocol.FlagLastChunk == 0
		if err := p.sendControl(t, buf, protocol.TypeACK, seq); err != nil {
			return err
		}
		seq++
		if !more {
			break
		}
	}
	return p.store.Write(fileID, received)
}

func (p *Peer) sendResponse(t transport.Transport, buf []byte, status uint8) error {
	respBuf := make([]byte, 1)
	payload, err := protocol.EncodeResponse(respBuf, status)
	if err != nil {
		return err
	}
	return p.send(t, buf, protocol.TypeResponse, 0, 0, payload)
}

func (p *Peer) sendControl(t transport.Transport, buf []byte, typ protocol.PacketType, seq uint16) error {
	return p.send(t, buf, typ, 0, seq, nil)
}

func (p *Peer) send(t transport.Transport, buf []byte, typ protocol.PacketType, flags uint8, seq uint16, payload []byte) error {
	n, err := protocol.Encode(buf, typ, flags, seq, payload)
	if err != nil {
		return err
	}
	return t.Send(buf[:n])
}

func (p *Peer) recv(t transport.Transport, buf []byte) (protocol.Header, []byte, error) {
	n, err := t.Recv(buf, p.timeout)
	if err != nil {
		return protocol.Header{}, nil, err
	}
	return protocol.Decode(buf[:n], p.maxPayload)
}
