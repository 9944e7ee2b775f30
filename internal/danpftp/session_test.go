package danpftp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danp-project/danp-ftp/internal/config"
	"github.com/danp-project/danp-ftp/internal/danpftp"
)

func TestCloseIsIdempotent(t *testing.T) {
	session, serverSide := newClient(1)
	defer serverSide.Close()

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	assert.Equal(t, danpftp.StateIdle, session.State())
}

func TestTransmitRejectsNilSource(t *testing.T) {
	session, serverSide := newClient(1)
	defer serverSide.Close()
	defer session.Close()

	_, err := session.Transmit(config.TransferConfig{FileID: []byte("a")}, nil)
	var statusErr *danpftp.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, danpftp.StatusInvalidParam, statusErr.Status)
}

func TestTransmitRejectsUninitializedSession(t *testing.T) {
	session, serverSide := newClient(1)
	serverSide.Close()
	require.NoError(t, session.Close())

	_, err := session.Transmit(config.TransferConfig{FileID: []byte("a")}, func(int, []byte, *bool) (int, error) { return 0, nil })
	var statusErr *danpftp.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, danpftp.StatusInvalidParam, statusErr.Status)
}
