package vm

import "ecmavm/pkg/errors"

// Exit-value encoding: a single Value slot doubles as flag and storage.
//   Invalid, number==0  -- normal fall-through
//   Invalid, number==1  -- break
//   Invalid, number==-1 -- continue
//   valid value         -- return v
// "Valid" here means Kind != KindInvalid.

func exitNormal() Value { return Value{Kind: KindInvalid} }

func exitBreak() Value {
	v := Value{Kind: KindInvalid}
	v.as.number = 1
	return v
}

func exitContinue() Value {
	v := Value{Kind: KindInvalid}
	v.as.number = -1
	return v
}

func exitIsValid(v Value) bool { return v.Kind != KindInvalid }

// tryStart implements TRY_START: if a catch is already
// registered in this frame, push the previous exception record onto a
// linked stack; install pc+offset as the new catch PC; invalidate
// exceptionSlot and the exit_value slot (with number=0).
func tryStart(frame *Frame, exceptionSlot, exitSlot *Value, catchPC uint32) {
	frame.pushExceptionRecord(catchPC)
	if exceptionSlot != nil {
		*exceptionSlot = Invalid
	}
	if exitSlot != nil {
		*exitSlot = exitNormal()
	}
}

// tryBreak implements TRY_BREAK: if exitSlot is not valid, set it to the
// break encoding. A TRY_RETURN value already present is left untouched —
// the return wins over a later break/continue in the same unwind pass.
func tryBreak(exitSlot *Value) {
	if !exitIsValid(*exitSlot) {
		*exitSlot = exitBreak()
	}
}

// tryContinue mirrors tryBreak for the continue encoding.
func tryContinue(exitSlot *Value) {
	if !exitIsValid(*exitSlot) {
		*exitSlot = exitContinue()
	}
}

// tryEnd implements TRY_END: pop the frame's exception
// record.
func tryEnd(frame *Frame) {
	frame.popExceptionRecord()
}

// catchOp implements CATCH: store the in-flight exception
// into dst; if noFinallyFollows, perform TRY_END; otherwise install the
// frame's catch at the finally entry.
func (vm *VM) catchOp(frame *Frame, dst *Value, noFinallyFollows bool, finallyPC uint32) {
	if dst != nil {
		*dst = vm.currentException
	}
	vm.currentException = Invalid
	if noFinallyFollows {
		tryEnd(frame)
		return
	}
	pc := finallyPC
	frame.Exception.Catch = &pc
}

// finallyOutcome is what FINALLY decided to do, consulted by the
// dispatch loop to drive control flow.
type finallyOutcome uint8

const (
	finallyFallThrough finallyOutcome = iota
	finallyRethrow
	finallyReturn
	finallyBreakJump
	finallyContinueJump
)

// finallyOp implements FINALLY's five-branch decision table.
func finallyOp(exceptionSlot, exitSlot *Value) (finallyOutcome, Value) {
	if exceptionSlot != nil && exitIsValid(*exceptionSlot) {
		return finallyRethrow, *exceptionSlot
	}
	if exitSlot != nil && exitIsValid(*exitSlot) {
		return finallyReturn, *exitSlot
	}
	if exitSlot != nil && exitSlot.as.number > 0 {
		return finallyBreakJump, Undefined
	}
	if exitSlot != nil && exitSlot.as.number < 0 {
		return finallyContinueJump, Undefined
	}
	return finallyFallThrough, Undefined
}

// --- Unwind algorithm ---

// unwind implements the six-step algorithm: walk frames from topFrame
// outward; a frame with a registered catch resumes dispatch there;
// otherwise the frame is freed (LIFO, per Invariant 4) and unwinding
// continues to the caller, stopping at a script-to-host boundary.
func (vm *VM) unwind() bool {
	for vm.topFrame != nil {
		frame := vm.topFrame

		if frame.Exception.Catch != nil {
			frame.PC = *frame.Exception.Catch
			if vm.Config.Debug {
				vm.backtrace = vm.backtrace[:0]
			}
			return true
		}

		if vm.Config.Debug {
			vm.backtrace = append(vm.backtrace, BacktraceEntry{
				Function: frame.Callee.debugName(),
				File:     frame.File,
				Line:     vm.currentLine(frame),
			})
		}

		wasScriptBoundary := !frame.Native && (frame.Previous == nil || frame.Previous.Native)

		vm.topFrame = frame.Previous
		if vm.topFrame != nil {
			vm.activeFrame = vm.nearestScriptFrame(vm.topFrame)
		}
		vm.freeFrame(frame)

		if wasScriptBoundary {
			return false
		}
	}
	return false
}

func (v Value) debugName() string {
	if v.Kind != KindFunction || v.AsObject() == nil || v.AsObject().Func == nil {
		return "<anonymous>"
	}
	if v.AsObject().Func.Lambda != nil {
		return v.AsObject().Func.Lambda.Name
	}
	return "<native>"
}

func (vm *VM) currentLine(frame *Frame) int {
	if frame.Chunk == nil || int(frame.PC) >= len(frame.Chunk.Code) {
		return 0
	}
	return frame.Chunk.Code[frame.PC].Line
}

// --- Throw helpers ---

// throwTypeErrorStatus raises a TypeError as the in-flight exception and
// returns StatusError for a handler to propagate.
func (vm *VM) throwTypeErrorStatus(msg string) Status {
	vm.currentException = vm.newErrorValue("TypeError", msg)
	return StatusError
}

// ThrowTypeError is the exported form used by the property subsystem.
func (vm *VM) ThrowTypeError(msg string) Status { return vm.throwTypeErrorStatus(msg) }

func (vm *VM) throwTypeErrorValue(msg string) (Value, Status) {
	return Undefined, vm.throwTypeErrorStatus(msg)
}

func (vm *VM) throwReferenceError(name, file string, line int) Status {
	msg := errors.NotDefined(name, file, line, vm.Config.Quiet)
	vm.currentException = vm.newErrorValue("ReferenceError", msg)
	return StatusError
}

func (vm *VM) throwInternalError(msg string) Status {
	vm.currentException = vm.newErrorValue("InternalError", msg)
	return StatusError
}

// newErrorValue builds a minimal Error-shaped object: {name, message}.
// Building the full Error.prototype chain is the built-ins' job; the
// core only needs something FINALLY/CATCH can carry and an embedder can
// inspect.
func (vm *VM) newErrorValue(name, message string) Value {
	obj := NewObject(nil)
	propertyInit(vm, obj, "name", String(name))
	propertyInit(vm, obj, "message", String(message))
	return FromObject(obj)
}
