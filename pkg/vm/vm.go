package vm

import (
	"ecmavm/pkg/bytecode"
	"ecmavm/pkg/errors"

	"github.com/google/uuid"
)

// Allocator is the host memory interface an embedder may wire in:
// Alloc(n)/Free(p). Memory allocation policy itself is out of scope for
// this core; it only calls through this interface at defined accounting
// points (frame push/pop). A nil Allocator is valid — Go's own heap
// still backs every value — the interface exists so an embedder wiring
// a pool/arena allocator has a hook.
type Allocator interface {
	Alloc(n int) []byte
	Free(p []byte)
}

// RetainRelease holds GC placeholder hooks an embedder may configure.
// Both may be nil. The core stores them in Config but does not call
// either hook.
type RetainRelease struct {
	Retain  func(v Value)
	Release func(v Value)
}

// Config carries the VM's tunables.
type Config struct {
	MaxFrames              int
	MaxPrototypeChainDepth int
	Debug                  bool // enables backtrace capture during unwind
	Quiet                  bool // selects the ReferenceError message format
	Allocator              Allocator
	RetainRelease          RetainRelease
}

// BacktraceEntry is one frame captured during debug-mode unwind.
type BacktraceEntry struct {
	Function string
	File     string
	Line     int
}

// VM is the interpreter core's mutable state.
type VM struct {
	ID uuid.UUID

	Config Config

	topFrame    *Frame // current invocation
	activeFrame *Frame // nearest script frame; native frames are transparent to `this`

	retval Value // scratch return slot

	currentException Value // in-flight exception (Invalid when none)

	backtrace  []BacktraceEntry
	frameDepth int
	stackSize  int

	chunk *bytecode.Chunk
}

// NewVM constructs a VM ready to Interpret a compiled Chunk.
func NewVM(cfg Config) *VM {
	return &VM{
		ID:               uuid.New(),
		Config:           cfg,
		currentException: Invalid,
	}
}

// Retval returns the VM's scratch return slot, the value STOP/RETURN
// past the root leaves behind.
func (vm *VM) Retval() Value { return vm.retval }

// Backtrace returns the frames captured during the most recent unwind,
// when Config.Debug is set.
func (vm *VM) Backtrace() []BacktraceEntry { return vm.backtrace }

// Interpret runs the dispatch loop starting at frame's saved PC against
// chunk, until a STOP/RETURN-past-root terminates it or an uncaught
// exception crosses the script-to-host boundary. This is the entry
// point an embedder calls with the initial activation frame.
func (vm *VM) Interpret(chunk *bytecode.Chunk, frame *Frame) (Status, error) {
	vm.chunk = chunk
	frame.Chunk = chunk
	vm.topFrame = frame
	vm.activeFrame = frame

	for {
		signal, st := vm.step(vm.topFrame)
		switch signal {
		case ctrlContinue:
			// PC already advanced by step.
		case ctrlCall:
			// vm.topFrame already switched by invoke().
		case ctrlReturn:
			if vm.topFrame == nil {
				return StatusOK, nil
			}
		case ctrlStop:
			return StatusOK, nil
		case ctrlThrow:
			if !vm.unwind() {
				return StatusError, vm.uncaughtError()
			}
		case ctrlPreempt:
			return st, nil
		}
	}
}

// uncaughtError converts the in-flight exception value into the error
// surface an embedder catches at Interpret's return (the unwind
// algorithm's final step: an exception that reaches past the last
// script-to-host boundary with no handler).
func (vm *VM) uncaughtError() error {
	msg, _ := ToString(vm, vm.currentException)
	line := 0
	file := ""
	if vm.topFrame != nil {
		line = vm.currentLine(vm.topFrame)
		file = vm.topFrame.File
	}
	return &errors.RuntimeError{Position: errors.Position{File: file, Line: line}, Msg: msg}
}
