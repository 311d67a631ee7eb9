package unistate

// Actions dispatches actions of type A to a bound [Dispatcher]: either the
// private dispatcher of a single store, or the dispatcher shared by every
// store of a kind.
//
// The zero value discards every action.
type Actions[A any] struct {
	dispatcher *Dispatcher[A]
}

// Dispatch sends action to the bound dispatcher.
func (x Actions[A]) Dispatch(action A) {
	if x.dispatcher != nil {
		x.dispatcher.Dispatch(action)
	}
}

// SharedActions returns the shared facade for stores with state type S,
// using the default kind (see [KindOf]). A store need not exist.
func SharedActions[S, A any](r *Registry) Actions[A] {
	return SharedActionsFor[A](r, KindOf[S]())
}

// SharedActionsFor is like [SharedActions], for an explicit kind.
func SharedActionsFor[A any](r *Registry, kind Kind) Actions[A] {
	return Actions[A]{dispatcher: SharedDispatcher[A](r, kind)}
}
