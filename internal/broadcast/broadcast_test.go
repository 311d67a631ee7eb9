package broadcast

import (
	"bytes"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-unistate/executor"
	"github.com/joeycumines/go-unistate/internal/goroutineid"
	"github.com/joeycumines/go-unistate/syncx"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	cell syncx.Mutex[State[int]]
}

func (h *harness) state(c *State[int]) *State[int] { return c }

func (h *harness) subscribe(exec executor.Executor, fn func(int)) syncx.Key {
	return syncx.Modify(&h.cell, func(s *State[int]) syncx.Key { return s.Subscribe(exec, fn) })
}

func (h *harness) unsubscribe(key syncx.Key) bool {
	return syncx.Modify(&h.cell, func(s *State[int]) bool { return s.Unsubscribe(key) })
}

func (h *harness) broadcast(v int) {
	ticket := syncx.Modify(&h.cell, func(s *State[int]) Ticket {
		s.Broadcast(v)
		return s.Claim()
	})
	Settle(&h.cell, h.state, ticket)
}

func (h *harness) send(key syncx.Key, v int) bool {
	var (
		sent   bool
		ticket Ticket
	)
	h.cell.Modify(func(s *State[int]) {
		sent = s.Send(key, v)
		ticket = s.Claim()
	})
	Settle(&h.cell, h.state, ticket)
	return sent
}

func (h *harness) draining() bool {
	return syncx.Modify(&h.cell, func(s *State[int]) bool { return s.draining })
}

func TestBroadcast_ordered(t *testing.T) {
	var h harness
	var a, b []int
	h.subscribe(executor.Immediate, func(v int) { a = append(a, v) })
	h.subscribe(executor.Immediate, func(v int) { b = append(b, v) })
	for i := range 5 {
		h.broadcast(i)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, a)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, b)
}

func TestBroadcast_noObservers(t *testing.T) {
	var h harness
	h.broadcast(1)
	assert.False(t, h.draining())
}

func TestBroadcast_reentrantBroadcastIsQueued(t *testing.T) {
	var h harness
	var trace []int
	h.subscribe(executor.Immediate, func(v int) {
		trace = append(trace, v)
		if v < 3 {
			// must not deadlock, and must be delivered after this call returns
			h.broadcast(v + 1)
			trace = append(trace, -v)
		}
	})
	h.broadcast(0)
	assert.Equal(t, []int{0, 0, 1, -1, 2, -2, 3}, trace)
}

func TestBroadcast_unsubscribeSkipsPending(t *testing.T) {
	var h harness
	var second []int
	var secondKey syncx.Key
	h.subscribe(executor.Immediate, func(v int) {
		// unsubscribe the second observer, before its delivery of v
		h.unsubscribe(secondKey)
	})
	secondKey = h.subscribe(executor.Immediate, func(v int) { second = append(second, v) })
	h.broadcast(1)
	assert.Empty(t, second)
	assert.Equal(t, 1, syncx.Synchronized(&h.cell, func(s State[int]) int { return s.Len() }))
}

func TestBroadcast_unsubscribeBeforeBroadcast(t *testing.T) {
	var h harness
	var o1, o2 []int
	h.subscribe(executor.Immediate, func(v int) { o1 = append(o1, v) })
	k2 := h.subscribe(executor.Immediate, func(v int) { o2 = append(o2, v) })
	require.True(t, h.unsubscribe(k2))
	require.False(t, h.unsubscribe(k2))
	h.broadcast(7)
	assert.Equal(t, []int{7}, o1)
	assert.Empty(t, o2)
}

func TestBroadcast_panicDoesNotStopDelivery(t *testing.T) {
	var h harness
	var got []int
	h.subscribe(executor.Immediate, func(v int) { panic(`boom`) })
	h.subscribe(executor.Immediate, func(v int) { got = append(got, v) })
	h.broadcast(1)
	h.broadcast(2)
	assert.Equal(t, []int{1, 2}, got)
}

func TestBroadcast_Send(t *testing.T) {
	var h harness
	var a, b []int
	ka := h.subscribe(executor.Immediate, func(v int) { a = append(a, v) })
	h.subscribe(executor.Immediate, func(v int) { b = append(b, v) })
	assert.True(t, h.send(ka, 9))
	assert.False(t, h.send(999, 9))
	assert.Equal(t, []int{9}, a)
	assert.Empty(t, b)
}

func TestBroadcast_deferredExecutorSkipsAfterUnsubscribe(t *testing.T) {
	var h harness
	var queued []func()
	deferred := executor.Func(func(work func()) { queued = append(queued, work) })
	var got []int
	key := h.subscribe(deferred, func(v int) { got = append(got, v) })
	h.broadcast(1)
	require.Len(t, queued, 1)
	h.unsubscribe(key)
	queued[0]()
	assert.Empty(t, got)
}

func TestSubscribe_nil(t *testing.T) {
	var s State[int]
	assert.Panics(t, func() { s.Subscribe(nil, func(int) {}) })
	assert.Panics(t, func() { s.Subscribe(executor.Immediate, nil) })
}

// A broadcast made while another goroutine is delivering returns only once
// its own delivery has run, on the caller's goroutine, after the drainer's
// own deliveries.
func TestSettle_waitsForDrainer(t *testing.T) {
	var h harness
	var (
		mu      sync.Mutex
		got     []int
		on      = make(map[int]uint64)
		entered = make(chan struct{})
		release = make(chan struct{})
	)
	h.subscribe(executor.Immediate, func(v int) {
		if v == 1 {
			close(entered)
			<-release
		}
		mu.Lock()
		got = append(got, v)
		on[v] = goroutineid.Get()
		mu.Unlock()
	})

	first := make(chan struct{})
	go func() {
		defer close(first)
		h.broadcast(1)
	}()
	<-entered

	time.AfterFunc(20*time.Millisecond, func() { close(release) })
	h.broadcast(2)

	mu.Lock()
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, goroutineid.Get(), on[2])
	assert.NotEqual(t, on[1], on[2])
	mu.Unlock()

	<-first
	assert.False(t, h.draining())
}

func TestSettle_manyCallers(t *testing.T) {
	const (
		callers = 8
		each    = 200
	)
	var h harness
	var (
		mu  sync.Mutex
		got []int
	)
	h.subscribe(executor.Immediate, func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})
	var wg sync.WaitGroup
	for c := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range each {
				v := c*each + i
				h.broadcast(v)
				// read-your-writes
				mu.Lock()
				found := false
				for _, g := range got {
					if g == v {
						found = true
						break
					}
				}
				mu.Unlock()
				if !found {
					t.Errorf(`value %d not delivered before broadcast returned`, v)
					return
				}
			}
		}()
	}
	wg.Wait()
	assert.Len(t, got, callers*each)
	assert.False(t, h.draining())
}

func TestDrain_goexitDuringDelivery(t *testing.T) {
	var h harness
	var got []int
	h.subscribe(executor.Immediate, func(v int) {
		if v == 1 {
			runtime.Goexit()
		}
		got = append(got, v)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.broadcast(1)
	}()
	<-done
	assert.False(t, h.draining())

	h.broadcast(2)
	assert.Equal(t, []int{2}, got)
}

func TestState_SetLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(&buf), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()

	var h harness
	h.cell.Modify(func(s *State[int]) { s.SetLogger(logger) })
	h.subscribe(executor.Immediate, func(v int) { panic(`observer failed`) })
	h.broadcast(1)

	assert.Contains(t, buf.String(), `recovered panic`)
	assert.Contains(t, buf.String(), `observer failed`)
}
