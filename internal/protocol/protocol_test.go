package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeBijection(t *testing.T) {
	cases := []struct {
		typ     PacketType
		flags   uint8
		seq     uint16
		payload []byte
	}{
		{TypeCommand, 0, 0, []byte{OpWrite, 1, 'a'}},
		{TypeResponse, 0, 0, []byte{RespOK}},
		{TypeData, FlagFirstChunk, 1, []byte("HELL")},
		{TypeData, FlagLastChunk, 2, []byte("O")},
		{TypeACK, 0, 2, []byte{}},
		{TypeNACK, 0, 1, []byte{}},
	}

	buf := make([]byte, HeaderSize+MaxPayload(256))
	for _, c := range cases {
		n, err := Encode(buf, c.typ, c.flags, c.seq, c.payload)
		require.NoError(t, err)

		h, payload, err := Decode(buf[:n], MaxPayload(256))
		require.NoError(t, err)
		assert.Equal(t, c.typ, h.Type)
		assert.Equal(t, c.flags, h.Flags)
		assert.Equal(t, c.seq, h.SequenceNum)
		assert.Equal(t, len(c.payload), int(h.PayloadLength))
		assert.Equal(t, c.payload, payload)
	}
}

func TestDecodeRejectsPayloadOverMax(t *testing.T) {
	buf := make([]byte, HeaderSize+8)
	n, err := Encode(buf, TypeData, 0, 1, []byte("12345678"))
	require.NoError(t, err)

	_, _, err = Decode(buf[:n], 4)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestDecodeRejectsCRCMismatch(t *testing.T) {
	buf := make([]byte, HeaderSize+8)
	n, err := Encode(buf, TypeData, 0, 1, []byte("DATA"))
	require.NoError(t, err)

	buf[HeaderSize] ^= 0x01
	_, _, err = Decode(buf[:n], MaxPayload(256))
	assert.ErrorIs(t, err, ErrCRCMismatch)
}

func TestCommandPayloadRoundtrip(t *testing.T) {
	buf := make([]byte, 128)
	encoded, err := EncodeCommand(buf, OpRead, []byte("report.bin"))
	require.NoError(t, err)

	opcode, fileID, err := DecodeCommand(encoded)
	require.NoError(t, err)
	assert.Equal(t, OpRead, opcode)
	assert.Equal(t, []byte("report.bin"), fileID)
}

func TestEncodeCommandRejectsOverlongFileID(t *testing.T) {
	buf := make([]byte, 128)
	_, err := EncodeCommand(buf, OpWrite, make([]byte, MaxFileIDLen+1))
	assert.Error(t, err)
}

func TestResponsePayloadRoundtrip(t *testing.T) {
	buf := make([]byte, 4)
	encoded, err := EncodeResponse(buf, RespFileNotFound)
	require.NoError(t, err)

	status, err := DecodeResponse(encoded)
	require.NoError(t, err)
	assert.Equal(t, RespFileNotFound, status)
}
