package danpftp

import (
	"errors"
	"time"

	"github.com/danp-project/danp-ftp/internal/protocol"
	"github.com/danp-project/danp-ftp/internal/transport"
)

// send encodes and writes one packet using the session's handle-resident
// send buffer.
func (s *Session) send(typ protocol.PacketType, flags uint8, seq uint16, payload []byte) error {
	n, err := protocol.Encode(s.sendBuf, typ, flags, seq, payload)
	if err != nil {
		return err
	}
	return s.transport.Send(s.sendBuf[:n])
}

// sendControl sends a zero-payload ACK/NACK at the given sequence number.
func (s *Session) sendControl(typ protocol.PacketType, seq uint16) error {
	return s.send(typ, 0, seq, nil)
}

// recv blocks for at most timeoutMS and decodes exactly one packet into
// the session's handle-resident receive buffer. The returned payload
// aliases that buffer and is only valid until the next recv call.
func (s *Session) recv(timeoutMS uint32) (protocol.Header, []byte, error) {
	n, err := s.transport.Recv(s.recvBuf, time.Duration(timeoutMS)*time.Millisecond)
	if err != nil {
		if errors.Is(err, transport.ErrTimeout) {
			s.metrics.AddTimeout()
		}
		return protocol.Header{}, nil, err
	}
	return protocol.Decode(s.recvBuf[:n], s.maxPayload)
}
