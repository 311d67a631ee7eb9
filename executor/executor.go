package executor

import (
	"github.com/joeycumines/go-unistate/internal/logging"
)

// Executor runs work. See the package documentation for the contract.
type Executor interface {
	Execute(work func())
}

// Func adapts an ordinary function to the [Executor] interface.
type Func func(work func())

var (
	// Immediate runs work synchronously, on the calling goroutine.
	Immediate Executor = Func(func(work func()) { work() })

	// Go runs each work function on its own goroutine. Panics are recovered
	// and logged using the package-level logger.
	Go Executor = Func(func(work func()) {
		go safeExecute(nil, work)
	})
)

// Execute calls fn(work).
func (fn Func) Execute(work func()) {
	fn(work)
}

// safeExecute runs work, recovering and logging any panic.
func safeExecute(logger *logging.Logger, work func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Recovered(logger, logging.CategoryExecutor, r)
		}
	}()
	work()
}
