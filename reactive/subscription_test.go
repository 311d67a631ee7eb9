package reactive

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscription_Unsubscribe_once(t *testing.T) {
	var calls int
	s := NewSubscription(func() { calls++ })
	assert.False(t, s.Unsubscribed())
	s.Unsubscribe()
	s.Unsubscribe()
	assert.True(t, s.Unsubscribed())
	assert.Equal(t, 1, calls)
}

func TestSubscription_Unsubscribe_concurrent(t *testing.T) {
	for range 100 {
		var calls atomic.Int32
		s := NewSubscription(func() { calls.Add(1) })

		start := make(chan struct{})
		var wg sync.WaitGroup
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				s.Unsubscribe()
			}()
		}
		close(start)
		wg.Wait()

		if n := calls.Load(); n != 1 {
			t.Fatalf(`expected exactly one cleanup, got %d`, n)
		}
	}
}

func TestSubscription_nil(t *testing.T) {
	var s *Subscription
	assert.True(t, s.Unsubscribed())
	s.Unsubscribe()

	n := NewSubscription(nil)
	assert.False(t, n.Unsubscribed())
	n.Unsubscribe()
	assert.True(t, n.Unsubscribed())
}

func TestSubscription_AddTo(t *testing.T) {
	scope := NewScope()
	var called bool
	s := NewSubscription(func() { called = true }).AddTo(scope)
	assert.Equal(t, 1, scope.Len())
	scope.Dispose()
	assert.True(t, called)
	assert.True(t, s.Unsubscribed())
}

func TestSubscription_AddTo_nilScope(t *testing.T) {
	s := NewSubscription(nil)
	assert.PanicsWithValue(t, `reactive: nil scope`, func() { s.AddTo(nil) })
	assert.False(t, s.Unsubscribed())
}
