// Package protocol implements the danp-ftp wire format: a 10-byte header
// (type, flags, sequence number, payload length, CRC) plus a
// variable-length payload, serialized little-endian, guarded by a CRC-32
// computed over the payload alone.
package protocol

import (
	"encoding/binary"
	"errors"

	"github.com/danp-project/danp-ftp/internal/crc"
)

// PacketType identifies the role of a packet on the wire.
type PacketType uint8

const (
	TypeCommand  PacketType = 0
	TypeResponse PacketType = 1
	TypeACK      PacketType = 2
	TypeNACK     PacketType = 3
	TypeData     PacketType = 4
)

func (t PacketType) String() string {
	switch t {
	case TypeCommand:
		return "COMMAND"
	case TypeResponse:
		return "RESPONSE"
	case TypeACK:
		return "ACK"
	case TypeNACK:
		return "NACK"
	case TypeData:
		return "DATA"
	default:
		return "UNKNOWN"
	}
}

// Flag bits carried in the header's flags byte.
const (
	FlagLastChunk  uint8 = 0x01
	FlagFirstChunk uint8 = 0x02
)

// Command opcodes carried in a COMMAND packet's payload.
const (
	OpRead  uint8 = 0x01
	OpWrite uint8 = 0x02
	OpAbort uint8 = 0x03
)

// Response status bytes carried in a RESPONSE packet's payload.
const (
	RespOK           uint8 = 0x00
	RespError        uint8 = 0x01
	RespFileNotFound uint8 = 0x02
	RespBusy         uint8 = 0x03
)

// HeaderSize is the fixed on-wire size of a packet header.
const HeaderSize = 1 + 1 + 2 + 2 + 4

// MaxFileIDLen is the tighter bound the 128-byte command scratch buffer
// implies, even though the wire's file_id_len byte could encode up to 255.
const MaxFileIDLen = 125

// commandScratchSize mirrors the fixed 128-byte command scratch buffer the
// original implementation reserves for command/response payloads.
const commandScratchSize = 128

// Header is the fixed portion of every packet.
type Header struct {
	Type          PacketType
	Flags         uint8
	SequenceNum   uint16
	PayloadLength uint16
	CRC           uint32
}

// ErrPayloadTooLarge is returned when a payload exceeds the negotiated
// MaxPayload for the packet's transport.
var ErrPayloadTooLarge = errors.New("protocol: payload exceeds max payload size")

// ErrShortBuffer is returned when a buffer is too short to hold a header
// or the declared payload.
var ErrShortBuffer = errors.New("protocol: buffer shorter than required size")

// ErrCRCMismatch is returned when a decoded payload fails CRC validation.
var ErrCRCMismatch = errors.New("protocol: crc mismatch")

// MaxPayload returns the largest payload that fits in a packet on a
// transport whose maximum packet size is mtu.
func MaxPayload(mtu int) int {
	n := mtu - HeaderSize
	if n < 0 {
		return 0
	}
	return n
}

// Encode writes header and payload into buf (which must be at least
// HeaderSize+len(payload) bytes), computing and storing the CRC over
// payload, and returns the number of bytes written.
func Encode(buf []byte, typ PacketType, flags uint8, seq uint16, payload []byte) (int, error) {
	if len(payload) > 0xFFFF {
		return 0, ErrPayloadTooLarge
	}
	total := HeaderSize + len(payload)
	if len(buf) < total {
		return 0, ErrShortBuffer
	}
	sum := crc.Checksum(payload)

	buf[0] = uint8(typ)
	buf[1] = flags
	binary.LittleEndian.PutUint16(buf[2:4], seq)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(len(payload)))
	binary.LittleEndian.PutUint32(buf[6:10], sum)
	copy(buf[HeaderSize:total], payload)
	return total, nil
}

// Decode parses a header from buf and validates the CRC over the payload
// bytes that follow it. maxPayload bounds the accepted payload_length. The
// returned payload aliases buf.
func Decode(buf []byte, maxPayload int) (Header, []byte, error) {
	if len(buf) < HeaderSize {
		return Header{}, nil, ErrShortBuffer
	}
	h := Header{
		Type:          PacketType(buf[0]),
		Flags:         buf[1],
		SequenceNum:   binary.LittleEndian.Uint16(buf[2:4]),
		PayloadLength: binary.LittleEndian.Uint16(buf[4:6]),
		CRC:           binary.LittleEndian.Uint32(buf[6:10]),
	}
	if int(h.PayloadLength) > maxPayload {
		return Header{}, nil, ErrPayloadTooLarge
	}
	end := HeaderSize + int(h.PayloadLength)
	if len(buf) < end {
		return Header{}, nil, ErrShortBuffer
	}
	payload := buf[HeaderSize:end]
	if !crc.Verify(payload, h.CRC) {
		return Header{}, nil, ErrCRCMismatch
	}
	return h, payload, nil
}

// EncodeCommand builds a COMMAND payload: opcode, file_id_len, file_id.
func EncodeCommand(buf []byte, opcode uint8, fileID []byte) ([]byte, error) {
	if len(fileID) > MaxFileIDLen {
		return nil, errors.New("protocol: file id exceeds max length")
	}
	need := 2 + len(fileID)
	if len(buf) < need || need > commandScratchSize {
		return nil, ErrShortBuffer
	}
	buf[0] = opcode
	buf[1] = uint8(len(fileID))
	copy(buf[2:need], fileID)
	return buf[:need], nil
}

// DecodeCommand parses a COMMAND payload into its opcode and file id.
func DecodeCommand(payload []byte) (opcode uint8, fileID []byte, err error) {
	if len(payload) < 2 {
		return 0, nil, ErrShortBuffer
	}
	opcode = payload[0]
	n := int(payload[1])
	if len(payload) < 2+n {
		return 0, nil, ErrShortBuffer
	}
	return opcode, payload[2 : 2+n], nil
}

// EncodeResponse builds a RESPONSE payload: a single status byte.
func EncodeResponse(buf []byte, status uint8) ([]byte, error) {
	if len(buf) < 1 {
		return nil, ErrShortBuffer
	}
	buf[0] = status
	return buf[:1], nil
}

// DecodeResponse extracts the status byte from a RESPONSE payload.
func DecodeResponse(payload []byte) (uint8, error) {
	if len(payload) < 1 {
		return 0, ErrShortBuffer
	}
	return payload[0], nil
}
