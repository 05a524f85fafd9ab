package notification

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSendToRegisteredUserWritesOnce(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient()
	hub.Register("u1", client)

	require.True(t, hub.SendToUser("u1", OrderUpdate("20250101-1", "Completed")))

	select {
	case e := <-client.Events():
		assert.Equal(t, Event{Type: TypeOrderUpdate, OrderID: "20250101-1", Status: "Completed"}, e)
	default:
		t.Fatal("expected one event")
	}
	assert.Empty(t, client.Events())
}

func TestSendToUnknownUserIsDropped(t *testing.T) {
	hub := NewHub(nil)
	other := NewClient()
	hub.Register("u1", other)

	assert.False(t, hub.SendToUser("ghost", OrderUpdate("x", "Pending")))
	assert.Empty(t, other.Events())
}

func TestRegisterSupersedesPreviousClient(t *testing.T) {
	hub := NewHub(nil)
	first, second := NewClient(), NewClient()
	hub.Register("u1", first)
	hub.Register("u1", second)

	hub.SendToUser("u1", OrderUpdate("o", "Cancelled"))
	assert.Empty(t, first.Events())
	assert.Len(t, second.Events(), 1)
	assert.Equal(t, 1, hub.Len())

	// the superseded connection closing must not evict its successor
	hub.Release("u1", first)
	assert.Equal(t, 1, hub.Len())
	hub.Release("u1", second)
	assert.Equal(t, 0, hub.Len())
}

func TestUnregisterIsSafeWhenAbsent(t *testing.T) {
	hub := NewHub(nil)
	hub.Unregister("nobody")
	hub.Register("u1", NewClient())
	hub.Unregister("u1")
	hub.Unregister("u1")
	assert.Equal(t, 0, hub.Len())
}

func TestBroadcastSkipsExcludedUser(t *testing.T) {
	hub := NewHub(nil)
	a, b, c := NewClient(), NewClient(), NewClient()
	hub.Register("a", a)
	hub.Register("b", b)
	hub.Register("c", c)

	n := hub.Broadcast(StockDepleted("p1", "Latte"), "b")
	assert.Equal(t, 2, n)
	assert.Len(t, a.Events(), 1)
	assert.Empty(t, b.Events())
	assert.Len(t, c.Events(), 1)
}

func TestSlowClientDoesNotBlockSender(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient()
	hub.Register("u1", client)

	for i := 0; i < clientBuffer; i++ {
		require.True(t, hub.SendToUser("u1", OrderUpdate("o", "Pending")))
	}
	assert.False(t, hub.SendToUser("u1", OrderUpdate("o", "Pending")))
}

// streamRecorder is a flushable ResponseWriter safe to read while Serve writes.
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   bytes.Buffer
	code   int
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header)}
}

func (r *streamRecorder) Header() http.Header { return r.header }

func (r *streamRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
}

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *streamRecorder) Flush() {}

func (r *streamRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func TestServeStreamsEventsAndHeartbeats(t *testing.T) {
	hub := NewHub(nil)
	rec := newStreamRecorder()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- hub.Serve(ctx, rec, "u1", 10*time.Millisecond)
	}()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, time.Millisecond)
	require.True(t, hub.SendToUser("u1", OrderUpdate("20250101-2", "Completed")))

	require.Eventually(t, func() bool {
		out := rec.String()
		return strings.Contains(out, `data: {"type":"ORDER_UPDATE","orderId":"20250101-2","status":"Completed"}`+"\n\n") &&
			strings.Contains(out, ": heartbeat\n\n")
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, hub.Len())
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}
