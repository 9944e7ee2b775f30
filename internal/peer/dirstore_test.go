package peer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danp-project/danp-ftp/internal/peer"
)

func TestDirStoreRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store := peer.NewDirStore(dir)

	require.NoError(t, store.Write("a.bin", []byte("hello")))
	data, ok := store.Read("a.bin")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)

	_, ok = store.Read("missing.bin")
	assert.False(t, ok)
}

func TestDirStoreRejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	store := peer.NewDirStore(dir)

	err := store.Write("../escape.bin", []byte("x"))
	assert.Error(t, err)
}
