package danpftp

import (
	"github.com/danp-project/danp-ftp/internal/config"
	"github.com/danp-project/danp-ftp/internal/logging"
	"github.com/danp-project/danp-ftp/internal/protocol"
)

// Transmit sends a file to the peer this Session is connected to, reading
// it from source in chunks of cfg's (defaulted/clamped) chunk_size.
//
// Grounded on original_source/src/danp_ftp.c's danp_ftp_transmit: build
// and send a WRITE command, require an OK RESPONSE, then loop chunks with
// stop-and-wait ACK and bounded per-chunk retries, restructured into
// early-return Go instead of the C's for(;;){...break;} single-exit idiom.
func (s *Session) Transmit(cfg config.TransferConfig, source SourceFunc) (int, error) {
	if err := s.requireInitialized(); err != nil {
		return 0, err
	}
	if source == nil {
		return 0, statusErr(StatusInvalidParam, "source callback must not be nil", nil)
	}
	rc, err := config.Resolve(cfg, s.maxPayload)
	if err != nil {
		return 0, statusErr(StatusInvalidParam, "invalid transfer config", err)
	}

	s.reset()
	s.logger.Infof("transmit starting", logging.Fields{"file_id": string(rc.FileID), "chunk_size": rc.ChunkSize})

	cmdPayload, err := protocol.EncodeCommand(s.cmdScratch[:], protocol.OpWrite, rc.FileID)
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
		s.logger.Warnf("transmit handshake failed", logging.Fields{"err": err})
		return 0, statusErr(StatusTransferFailed, "handshake: no OK response", err)
	}
	status, err := protocol.DecodeResponse(payload)
	if err != nil || status != protocol.RespOK {
		s.state = StateError
		s.metrics.AddError()
		return 0, statusErr(StatusTransferFailed, "handshake: peer did not accept write", err)
	}

	s.state = StateTransferring
	s.seq = 1

	offset := 0
	for {
		chunkCap := int(rc.ChunkSize)
		payloadBuf := s.sendBuf[protocol.HeaderSize : protocol.HeaderSize+chunkCap]
		more := true
		n, err := source(offset, payloadBuf, &more)
		if err != nil {
			s.state = StateError
			s.metrics.AddError()
			return 0, statusErr(StatusError, "source callback failed", err)
		}
		if n == 0 {
			// End of stream: the Open Questions resolution in SPEC_FULL.md
			// says this does not emit a zero-length LAST_CHUNK DATA packet.
			break
		}

		flags := uint8(0)
		if offset == 0 {
			flags |= protocol.FlagFirstChunk
		}
		if !more {
			flags |= protocol.FlagLastChunk
		}

		seq := s.seq
		chunk := payloadBuf[:n]
		if err := s.sendChunkWithRetries(seq, flags, chunk, rc.TimeoutMS, rc.MaxRetries); err != nil {
			s.state = StateError
			s.metrics.AddError()
			return 0, err
		}

		s.metrics.AddBytesSent(n)
		offset += n
		s.totalBytes = offset
		s.seq++
		if !more {
			break
		}
	}

	s.state = StateComplete
	s.logger.Infof("transmit complete", logging.Fields{"bytes": s.totalBytes})
	return s.totalBytes, nil
}

// sendChunkWithRetries sends one DATA packet and waits for its matching
// ACK, making at most maxRetries attempts in total (the first send
// included). Any send error, receive
// error/timeout, CRC mismatch, NACK, mismatched sequence, or unexpected
// type counts as one retry attempt, matching spec.md §4.6 step 6c.
func (s *Session) sendChunkWithRetries(seq uint16, flags uint8, chunk []byte, timeoutMS uint32, maxRetries uint8) error {
	var lastErr error
	for attempt := uint8(0); attempt < maxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.AddRetransmission()
			s.logger.Warnf("retrying chunk", logging.Fields{"seq": seq, "attempt": attempt})
		}

		if err := s.send(protocol.TypeData, flags, seq, chunk); err != nil {
			lastErr = err
			continue
		}
		s.metrics.AddSegmentSent()

		ah, _, err := s.recv(timeoutMS)
		if err != nil {
			lastErr = err
			continue
		}
		if ah.Type == protocol.TypeNACK {
			s.metrics.AddNackReceived()
			lastErr = statusErr(StatusTransferFailed, "peer sent NACK", nil)
			continue
		}
		if ah.Type != protocol.TypeACK || ah.SequenceNum != seq {
			lastErr = statusErr(StatusTransferFailed, "unexpected reply to DATA", nil)
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = statusErr(StatusTransferFailed, "max retries exhausted", nil)
	}
	return statusErr(StatusTransferFailed, "chunk retries exhausted", lastErr)
}
