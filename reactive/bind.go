package reactive

import (
	"github.com/joeycumines/go-unistate/executor"
)

// Bind keeps an external target in sync with source: set is called, via
// exec, with the current value, then every subsequent value. The returned
// subscription is owned by scope, which the target is expected to dispose as
// part of its own teardown, ending the binding.
func Bind[T any](source Observable[T], exec executor.Executor, scope *Scope, set func(value T)) *Subscription {
	if scope == nil {
		panic(`reactive: nil scope`)
	}
	return source.Subscribe(exec, set).AddTo(scope)
}
