package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn replays inbound messages and records writes.
type fakeConn struct {
	mu      sync.Mutex
	inbound chan []byte
	written [][]byte
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 8)}
}

func (f *fakeConn) SetReadLimit(int64) {}
func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-f.inbound
	if !ok {
		return 0, nil, errors.New("closed")
	}
	return websocket.TextMessage, data, nil
}

func (f *fakeConn) WriteMessage(mt int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mt == websocket.TextMessage || mt == websocket.BinaryMessage {
		f.written = append(f.written, data)
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.written...)
}

func startHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()
	h := New("test", opts...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	require.Eventually(t, h.IsRunning, time.Second, time.Millisecond)
	return h
}

func TestBroadcastReachesClients(t *testing.T) {
	h := startHub(t)

	a, b := newFakeConn(), newFakeConn()
	ca, cb := NewClient(h, a), NewClient(h, b)
	go ca.Run()
	go cb.Run()
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, time.Millisecond)

	h.Broadcast(NewJSONMessage([]byte(`{"seq":1}`)))

	for _, c := range []*fakeConn{a, b} {
		assert.Eventually(t, func() bool { return len(c.messages()) == 1 }, time.Second, time.Millisecond)
		assert.JSONEq(t, `{"seq":1}`, string(c.messages()[0]))
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	h := startHub(t)

	conn := newFakeConn()
	c := NewClient(h, conn)
	done := make(chan struct{})
	go func() {
		c.Run()
		close(done)
	}()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	close(conn.inbound)
	<-done
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, time.Millisecond)
}

func TestHandlerReceivesClientMessages(t *testing.T) {
	got := make(chan string, 1)
	h := startHub(t, WithHandler(func(c *Client, data []byte) {
		got <- string(data)
	}))

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	conn.inbound <- []byte(`{"type":"command"}`)

	select {
	case msg := <-got:
		assert.Equal(t, `{"type":"command"}`, msg)
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
	close(conn.inbound)
}

func TestRunStopsOnCancel(t *testing.T) {
	h := New("cancel")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	require.Eventually(t, h.IsRunning, time.Second, time.Millisecond)

	cancel()
	<-done
	assert.False(t, h.IsRunning())
}

func TestBroadcastDropsWhenBacklogged(t *testing.T) {
	h := New("idle")
	for i := 0; i < cap(h.broadcast)+3; i++ {
		h.Broadcast(NewJSONMessage([]byte{'0' + byte(i%10)}))
	}
	assert.Equal(t, uint64(3), h.Dropped())
}
