package danpftp

import (
	"github.com/danp-project/danp-ftp/internal/config"
	"github.com/danp-project/danp-ftp/internal/logging"
	"github.com/danp-project/danp-ftp/internal/protocol"
)

// Receive pulls a file from the peer this Session is connected to,
// delivering it to sink in the chunks the peer sends.
//
// Grounded on original_source/src/danp_ftp.c's danp_ftp_receive: send a
// READ command, require an OK RESPONSE (FILE_NOT_FOUND surfaces as its
// own status), then loop receiving DATA packets, NACKing on wrong type or
// sequence mismatch (without advancing the expected sequence) and ACKing
// on acceptance.
func (s *Session) Receive(cfg config.TransferConfig, sink SinkFunc) (int, error) {
	if err := s.requireInitialized(); err != nil {
		return 0, err
	}
	if sink == nil {
		return 0, statusErr(StatusInvalidParam, "sink callback must not be nil", nil)
	}
	rc, err := config.Resolve(cfg, s.maxPayload)
	if err != nil {
		return 0, statusErr(StatusInvalidParam, "invalid transfer config", err)
	}

	s.reset()
	s.logger.Infof("receive starting", logging.Fields{"file_id": string(rc.FileID)})

	cmdPayload, err := protocol.EncodeCommand(s.cmdScratch[:], protocol.OpRead, rc.FileID)
	if err != nil {
		s.state = StateError
		return 0, statusErr(StatusInvalidParam, "encode command failed", err)
	}
	if err := s.send(protocol.TypeCommand, 0, 0, cmdPayload); err != nil {
		s.state = StateError
		s.metrics.AddError()
		return 0, statusErr(StatusTransferFailed, "send command failed", err)
	}

	h, payload, err := s.recv(rc.TimeoutMS)
	if err != nil || h.Type != protocol.TypeResponse {
		s.state = StateError
		s.metrics.AddError()
		return 0, statusErr(StatusTransferFailed, "handshake: no response", err)
	}
	status, err := protocol.DecodeResponse(payload)
	if err != nil {
		s.state = StateError
		s.metrics.AddError()
		return 0, statusErr(StatusTransferFailed, "handshake: malformed response", err)
	}
	if status == protocol.RespFileNotFound {
		s.state = StateError
		return 0, statusErr(StatusFileNotFound, "peer reports file not found", nil)
	}
	if status != protocol.RespOK {
		s.state = StateError
		s.metrics.AddError()
		return 0, statusErr(StatusTransferFailed, "handshake: peer did not accept read", nil)
	}

	s.state = StateTransferring
	s.seq = 1

	offset := 0
	for {
		h, payload, err := s.recv(rc.TimeoutMS)
		if err != nil {
			s.state = StateError
			s.metrics.AddError()
			return 0, statusErr(StatusTransferFailed, "receive failed", err)
		}

		if h.Type != protocol.TypeData || h.SequenceNum != s.seq {
			if err := s.sendControl(protocol.TypeNACK, s.seq); err != nil {
				s.state = StateError
				s.metrics.AddError()
				return 0, statusErr(StatusTransferFailed, "send NACK failed", err)
			}
			continue
		}

		more := h.Flags&protocol.FlagLastChunk == 0
		if err := sink(offset, payload, more); err != nil {
			s.state = StateError
			return 0, statusErr(StatusError, "sink callback failed", err)
		}

		if err := s.sendControl(protocol.TypeACK, s.seq); err != nil {
			s.state = StateError
			s.metrics.AddError()
			return 0, statusErr(StatusTransferFailed, "send ACK failed", err)
		}

		s.metrics.AddSegmentReceived()
		s.metrics.AddBytesReceived(len(payload))
		offset += len(payload)
		s.totalBytes = offset
		s.seq++

		if !more {
			break
		}
	}

	s.state = StateComplete
	s.logger.Infof("receive complete", logging.Fields{"bytes": s.totalBytes})
	return s.totalBytes, nil
}
