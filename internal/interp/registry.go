package interp

import "github.com/cwbudde/go-lisplang/internal/value"

// handlerStateRegistry maps handler IDs to the mutable current state of
// live handle blocks. It is the only mutable shared data in the
// interpreter; every other piece of state flows through immutable frame
// copies. Allocation is strictly LIFO: a handle block pushes on entry and
// its HandleReturnValue pops on completion, so IDs are dense and
// monotonically increasing while a block lives.
//
// The registry is owned by an Interp instance, not process-global, so
// independent interpreters can coexist.
type handlerStateRegistry struct {
	states []value.Value
}

// register saves the seed state of a new handle block and returns its ID.
func (r *handlerStateRegistry) register(seed value.Value) int {
	id := len(r.states)
	r.states = append(r.states, seed)
	return id
}

// unregister releases the state of the given handle block. Release must
// happen from the top of the stack.
func (r *handlerStateRegistry) unregister(calling *StackFrame, id int) {
	if id+1 != len(r.states) {
		calling.ThrowError("handler state deregistration out of LIFO order (engine bug)")
	}
	r.states = r.states[:len(r.states)-1]
}

// state returns the current state of the given handle block.
func (r *handlerStateRegistry) state(calling *StackFrame, id int) value.Value {
	if id >= len(r.states) {
		calling.ThrowError("handler state id %d out of range (engine bug)", id)
	}
	return r.states[id]
}

// setState replaces the current state of the given handle block.
func (r *handlerStateRegistry) setState(calling *StackFrame, id int, v value.Value) {
	if id >= len(r.states) {
		calling.ThrowError("handler state id %d out of range (engine bug)", id)
	}
	r.states[id] = v
}

// releaseAbove pops every entry registered after the given block. Used
// when a stop unwinds past handle blocks whose placeholders will never be
// dereferenced.
func (r *handlerStateRegistry) releaseAbove(calling *StackFrame, id int) {
	if id >= len(r.states) {
		calling.ThrowError("handler state id %d out of range (engine bug)", id)
	}
	r.states = r.states[:id+1]
}

// size returns the number of live handler state entries.
func (r *handlerStateRegistry) size() int {
	return len(r.states)
}
