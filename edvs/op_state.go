package edvs

import "sync/atomic"

// OpState is the acquisition lifecycle state of a Device.
type OpState uint32

const (
	StoppedState OpState = iota
	StartingState
	RunningState
	StoppingState
)

func (s OpState) String() string {
	switch s {
	case StoppedState:
		return "Stopped"
	case StartingState:
		return "Starting"
	case RunningState:
		return "Running"
	case StoppingState:
		return "Stopping"
	default:
		return "Unknown"
	}
}

type AtomicOpState struct {
	state atomic.Uint32
}

func (st *AtomicOpState) String() string {
	return st.Get().String()
}

// Get returns the current state of the AtomicOpState.
func (st *AtomicOpState) Get() OpState {
	return OpState(st.state.Load())
}

// Set sets the state of the AtomicOpState to the given state.
func (st *AtomicOpState) Set(state OpState) {
	st.state.Store(uint32(state))
}

func (st *AtomicOpState) IsStopped() bool {
	return st.Get() == StoppedState
}

func (st *AtomicOpState) IsRunning() bool {
	return st.Get() == RunningState
}

func (st *AtomicOpState) ToStarting() bool {
	return st.state.CompareAndSwap(uint32(StoppedState), uint32(StartingState))
}

func (st *AtomicOpState) ToRunning() bool {
	if st.IsRunning() {
		return true
	}

	return st.state.CompareAndSwap(uint32(StartingState), uint32(RunningState))
}

// ToStopping moves a running or half-started acquisition to Stopping.
func (st *AtomicOpState) ToStopping() bool {
	result := st.state.CompareAndSwap(uint32(RunningState), uint32(StoppingState))
	if !result {
		return st.state.CompareAndSwap(uint32(StartingState), uint32(StoppingState))
	}

	return result
}

func (st *AtomicOpState) ToStopped() bool {
	if st.IsStopped() {
		return true
	}

	return st.state.CompareAndSwap(uint32(StoppingState), uint32(StoppedState))
}
