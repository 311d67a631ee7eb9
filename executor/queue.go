package executor

import (
	"errors"

	"github.com/joeycumines/go-unistate/internal/logging"
)

// Loop is the interface required by [Queue] for event loop integration. It
// is satisfied by *eventloop.Loop, from github.com/joeycumines/go-eventloop.
type Loop interface {
	// Submit submits a task to the loop for execution. Returns an error if
	// the loop has been shut down.
	Submit(func()) error
}

// Queue is an [Executor] that hands work to a [Loop]. Ordering and mutual
// exclusion are whatever the loop provides: an event loop runs tasks one at a
// time, in submission order.
//
// If the loop rejects work (e.g. because it has terminated), the work runs
// inline on the submitting goroutine, and a warning is logged.
type Queue struct {
	loop   Loop
	logger *logging.Logger
}

// NewQueue creates a Queue over loop, which must not be nil.
func NewQueue(loop Loop, opts ...Option) (*Queue, error) {
	if loop == nil {
		return nil, errors.New("executor: loop must not be nil")
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Queue{
		loop:   loop,
		logger: cfg.logger,
	}, nil
}

// Execute submits work to the loop. Work must not be nil.
func (x *Queue) Execute(work func()) {
	if work == nil {
		panic(`executor: nil work`)
	}
	if err := x.loop.Submit(work); err != nil {
		logging.Or(x.logger).Warning().
			Str(`category`, logging.CategoryExecutor).
			Err(err).
			Log(`loop rejected work, running inline`)
		safeExecute(x.logger, work)
	}
}
