package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danp-project/danp-ftp/internal/protocol"
)

func TestPipeTransportRoundtrip(t *testing.T) {
	a, b := NewPipePair()
	defer a.Close()
	defer b.Close()

	buf := make([]byte, protocol.HeaderSize+8)
	n, err := protocol.Encode(buf, protocol.TypeData, 0, 1, []byte("payload"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Send(buf[:n]) }()

	recvBuf := make([]byte, protocol.HeaderSize+8)
	got, err := b.Recv(recvBuf, time.Second)
	require.NoError(t, err)
	require.NoError(t, <-done)

	h, payload, err := protocol.Decode(recvBuf[:got], 8)
	require.NoError(t, err)
	assert.Equal(t, protocol.TypeData, h.Type)
	assert.Equal(t, []byte("payload"), payload)
}

func TestPipeTransportRecvTimesOut(t *testing.T) {
	a, b := NewPipePair()
	defer a.Close()
	defer b.Close()

	buf := make([]byte, protocol.HeaderSize)
	_, err := b.Recv(buf, 20*time.Millisecond)
	assert.True(t, errors.Is(err, ErrTimeout))
}
