package peer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danp-project/danp-ftp/internal/peer"
	"github.com/danp-project/danp-ftp/internal/protocol"
	"github.com/danp-project/danp-ftp/internal/transport"
)

func TestServeReadRoundtrip(t *testing.T) {
	store := peer.NewMemStore()
	store.Seed("report.bin", []byte("HELLO WORLD"))
	p := peer.New(store, protocol.MaxPayload(256), peer.WithChunkSize(4), peer.WithTimeout(time.Second))

	client, server := transport.NewPipePair()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() { done <- p.Serve(server) }()

	buf := make([]byte, protocol.HeaderSize+protocol.MaxPayload(256))
	cmdPayload, err := protocol.EncodeCommand(make([]byte, 128), protocol.OpRead, []byte("report.bin"))
	require.NoError(t, err)
	n, err := protocol.Encode(buf, protocol.TypeCommand, 0, 0, cmdPayload)
	require.NoError(t, err)
	require.NoError(t, client.Send(buf[:n]))

	rn, err := client.Recv(buf, time.Second)
	require.NoError(t, err)
	h, payload, err := protocol.Decode(buf[:rn], protocol.MaxPayload(256))
	require.NoError(t, err)
	require.Equal(t, protocol.TypeResponse, h.Type)
	status, err := protocol.DecodeResponse(payload)
	require.NoError(t, err)
	require.Equal(t, protocol.RespOK, status)

	var received []byte
	seq := uint16(1)
	for {
		rn, err := client.Recv(buf, time.Second)
		require.NoError(t, err)
		h, payload, err := protocol.Decode(buf[:rn], protocol.MaxPayload(256))
		require.NoError(t, err)
		require.Equal(t, protocol.TypeData, h.Type)
		require.Equal(t, seq, h.SequenceNum)
		received = append(received, payload...)

		ackBuf := make([]byte, protocol.HeaderSize)
		an, err := protocol.Encode(ackBuf, protocol.TypeACK, 0, seq, nil)
		require.NoError(t, err)
		require.NoError(t, client.Send(ackBuf[:an]))

		if h.Flags&protocol.FlagLastChunk != 0 {
			break
		}
		seq++
	}

	require.NoError(t, <-done)
	assert.Equal(t, []byte("HELLO WORLD"), received)
}

func TestServeReadFileNotFound(t *testing.T) {
	store := peer.NewMemStore()
	p := peer.New(store, protocol.MaxPayload(256))

	client, server := transport.NewPipePair()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() { done <- p.Serve(server) }()

	buf := make([]byte, protocol.HeaderSize+protocol.MaxPayload(256))
	cmdPayload, err := protocol.EncodeCommand(make([]byte, 128), protocol.OpRead, []byte("missing"))
	require.NoError(t, err)
	n, err := protocol.Encode(buf, protocol.TypeCommand, 0, 0, cmdPayload)
	require.NoError(t, err)
	require.NoError(t, client.Send(buf[:n]))

	rn, err := client.Recv(buf, time.Second)
	require.NoError(t, err)
	h, payload, err := protocol.Decode(buf[:rn], protocol.MaxPayload(256))
	require.NoError(t, err)
	require.Equal(t, protocol.TypeResponse, h.Type)
	status, err := protocol.DecodeResponse(payload)
	require.NoError(t, err)
	assert.Equal(t, protocol.RespFileNotFound, status)

	require.NoError(t, <-done)
}
