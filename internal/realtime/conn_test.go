package realtime

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFrames(t *testing.T, frames [][]byte) []serverMessage {
	t.Helper()
	messages := make([]serverMessage, 0, len(frames))
	for _, frame := range frames {
		var msg serverMessage
		require.NoError(t, json.Unmarshal(frame, &msg))
		messages = append(messages, msg)
	}
	return messages
}

func TestConnPingYieldsSinglePong(t *testing.T) {
	t.Parallel()

	sock := newFakeSocket()
	conn := NewConn(sock, testIdentity("Acme"), 4, testLogger())
	go conn.run()
	defer conn.Close()

	sock.inbound <- []byte(`{"type":"ping"}`)

	require.Eventually(t, func() bool {
		return len(sock.writtenFrames()) == 1
	}, time.Second, 5*time.Millisecond)

	messages := decodeFrames(t, sock.writtenFrames())
	assert.Equal(t, MessageTypePong, messages[0].Type)
	assert.Equal(t, "Connection alive", messages[0].Message)

	// Exactly one pong per ping.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, sock.writtenFrames(), 1)
}

func TestConnMalformedFramesIgnored(t *testing.T) {
	t.Parallel()

	sock := newFakeSocket()
	conn := NewConn(sock, testIdentity("Acme"), 4, testLogger())
	go conn.run()
	defer conn.Close()

	sock.inbound <- []byte(`not json at all`)
	sock.inbound <- []byte(`{"type":"unknown_kind"}`)
	sock.inbound <- []byte(`{"type":"ping"}`)

	// The connection survives garbage and still answers the ping.
	require.Eventually(t, func() bool {
		return len(sock.writtenFrames()) == 1
	}, time.Second, 5*time.Millisecond)

	messages := decodeFrames(t, sock.writtenFrames())
	assert.Equal(t, MessageTypePong, messages[0].Type)
}

func TestConnEnqueueNonBlocking(t *testing.T) {
	t.Parallel()

	// No pumps running: the buffer fills and Enqueue refuses without
	// blocking.
	conn := NewConn(newFakeSocket(), testIdentity("Acme"), 2, testLogger())

	assert.True(t, conn.Enqueue([]byte(`{"a":1}`)))
	assert.True(t, conn.Enqueue([]byte(`{"a":2}`)))
	assert.False(t, conn.Enqueue([]byte(`{"a":3}`)))
}

func TestConnEnqueueAfterCloseRefused(t *testing.T) {
	t.Parallel()

	conn := NewConn(newFakeSocket(), testIdentity("Acme"), 4, testLogger())
	conn.Close()

	assert.False(t, conn.Enqueue([]byte(`{}`)))
}

func TestConnCloseRunsHookExactlyOnce(t *testing.T) {
	t.Parallel()

	var closes atomic.Int32
	conn := NewConn(newFakeSocket(), testIdentity("Acme"), 4, testLogger())
	conn.onClose = func(*Conn) { closes.Add(1) }

	conn.Close()
	conn.Close()
	conn.Close()

	assert.Equal(t, int32(1), closes.Load())
}

func TestConnPeerDisconnectTriggersClose(t *testing.T) {
	t.Parallel()

	sock := newFakeSocket()
	var closes atomic.Int32
	conn := NewConn(sock, testIdentity("Acme"), 4, testLogger())
	conn.onClose = func(*Conn) { closes.Add(1) }

	done := make(chan struct{})
	go func() {
		conn.run()
		close(done)
	}()

	close(sock.inbound) // peer goes away

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read pump did not exit after peer disconnect")
	}
	require.Eventually(t, func() bool {
		return closes.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestConnWritePumpDeliversInOrder(t *testing.T) {
	t.Parallel()

	sock := newFakeSocket()
	conn := NewConn(sock, testIdentity("Acme"), 8, testLogger())
	go conn.writePump()
	defer conn.Close()

	require.True(t, conn.Enqueue([]byte(`{"seq":1}`)))
	require.True(t, conn.Enqueue([]byte(`{"seq":2}`)))
	require.True(t, conn.Enqueue([]byte(`{"seq":3}`)))

	require.Eventually(t, func() bool {
		return len(sock.writtenFrames()) == 3
	}, time.Second, 5*time.Millisecond)

	frames := sock.writtenFrames()
	assert.Equal(t, `{"seq":1}`, string(frames[0]))
	assert.Equal(t, `{"seq":2}`, string(frames[1]))
	assert.Equal(t, `{"seq":3}`, string(frames[2]))
}
