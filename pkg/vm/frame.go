package vm

import "ecmavm/pkg/bytecode"

// Scope is an indexed array of value slots addressable by operand
// descriptors. ARGUMENTS scope holds `this` at index 0.
type Scope struct {
	Kind  bytecode.ScopeKind
	Slots []Value
}

// ExceptionRecord is per-frame try-nesting state: a catch
// PC (nullable) and a singly-linked list of saved records for nesting.
// Catch == nil means "no handler in this frame" (Invariant 1).
type ExceptionRecord struct {
	Catch *uint32
	Next  *ExceptionRecord
}

// Frame is a single activation record.
type Frame struct {
	Previous *Frame

	Ctor   bool // invoked with `new`
	Native bool // native (host) callee; no bytecode to resume

	Scopes [bytecode.NumScopeKinds]*Scope

	ArgumentsObject *Value // materialized lazily, cached here (nil until first ARGUMENTS use)

	Exception ExceptionRecord

	// Size is the bump-stack accounting value: a
	// frame with Size == 0 is not allocator-owned and must not be freed
	// (e.g. a borrowed top-level frame the embedder supplied directly).
	Size int

	// Script-frame-only fields (Native == false):
	Closures    []*Value
	PC          uint32 // bytecode PC to resume
	Chunk       *bytecode.Chunk
	RetvalDest  bytecode.OperandDescriptor // caller's operand1 descriptor
	RetvalFrame *Frame                     // frame RetvalDest resolves against (the caller)
	Callee      Value                      // the function Value being executed
	File        string                     // for REFERENCE_ERROR formatting
}

// Resolve maps an operand descriptor to the slot it addresses in this
// frame's scope array.
func (f *Frame) Resolve(d bytecode.OperandDescriptor) *Value {
	scope := f.Scopes[d.Scope]
	if scope == nil || int(d.Index) >= len(scope.Slots) {
		return nil
	}
	return &scope.Slots[d.Index]
}

// This returns the frame's `this` binding: ARGUMENTS[0].
func (f *Frame) This() Value {
	scope := f.Scopes[bytecode.ScopeArguments]
	if scope == nil || len(scope.Slots) == 0 {
		return Undefined
	}
	return scope.Slots[0]
}

// pushExceptionRecord implements TRY_START's nesting:
// if a catch is already registered in this frame, push the previous
// exception record onto a linked stack; install the new catch PC.
func (f *Frame) pushExceptionRecord(catchPC uint32) {
	if f.Exception.Catch != nil {
		saved := f.Exception
		f.Exception.Next = &saved
	}
	pc := catchPC
	f.Exception.Catch = &pc
}

// popExceptionRecord implements TRY_END: pop the frame's exception
// record (restore the saved parent one if present, else clear catch).
func (f *Frame) popExceptionRecord() {
	if f.Exception.Next != nil {
		f.Exception = *f.Exception.Next
		return
	}
	f.Exception = ExceptionRecord{}
}
