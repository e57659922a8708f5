package ws

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionSendDropsWhenQueueFull(t *testing.T) {
	req := require.New(t)
	s := NewSession(1, nil)

	for i := 0; i < defaultSendBuffer; i++ {
		req.True(s.SendFrame([]byte("{}")))
	}
	// 队列满后丢帧而不是阻塞
	req.False(s.SendFrame([]byte("{}")))
}

func TestSessionSendAfterClose(t *testing.T) {
	req := require.New(t)
	s := NewSession(1, nil)

	s.Close()
	s.Close() // 幂等

	req.False(s.Send("presence-changed", nil))

	select {
	case <-s.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	req := require.New(t)

	buf, err := EncodeFrame("messages-marked-read", map[string]any{"conversation_id": 3})
	req.NoError(err)

	f, err := DecodeFrame(buf)
	req.NoError(err)
	req.Equal("messages-marked-read", f.Event)
	req.JSONEq(`{"conversation_id":3}`, string(f.Data))
}
