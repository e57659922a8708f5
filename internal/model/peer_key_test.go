package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPeerKeyOrderInsensitive(t *testing.T) {
	require.Equal(t, "3_12", BuildPeerKey(12, 3))
	require.Equal(t, "3_12", BuildPeerKey(3, 12))
}

func TestPeerOf(t *testing.T) {
	key := BuildPeerKey(3, 12)

	peer, ok := PeerOf(key, 3)
	require.True(t, ok)
	require.Equal(t, uint64(12), peer)

	peer, ok = PeerOf(key, 12)
	require.True(t, ok)
	require.Equal(t, uint64(3), peer)

	_, ok = PeerOf(key, 7)
	require.False(t, ok)

	_, ok = PeerOf("garbage", 3)
	require.False(t, ok)
}
