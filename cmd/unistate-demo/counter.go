package main

// counter is the state of every store in the demo.
type counter struct {
	Count   int
	Updates int
}

type counterAction struct {
	Delta int
	Reset bool
}

func mutateCounter(state *counter, action counterAction) {
	state.Updates++
	if action.Reset {
		state.Count = 0
		return
	}
	state.Count += action.Delta
}
