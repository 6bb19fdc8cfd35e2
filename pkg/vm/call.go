package vm

import "ecmavm/pkg/bytecode"

// frameCreate implements frame creation:
//  1. callee must be a function (else TypeError).
//  2. If ctor, the function must have the constructor flag; script
//     functions get a fresh object whose __proto__ is callee.prototype
//     (or a computed default); native constructors receive the
//     caller-supplied this.
//  3. The frame is allocated with `this` followed by exactly the
//     supplied arguments, the callee's closures installed, and
//     ctor/native flags set. The ARGUMENTS scope is not padded to the
//     callee's declared parameter count: an argument slot past the
//     supplied ones does not resolve.
func (vm *VM) frameCreate(callee Value, this Value, args []Value, ctor bool) (*Frame, Status) {
	if callee.Kind != KindFunction {
		return nil, vm.throwTypeErrorStatus(callee.Kind.String() + " is not a function")
	}
	fn := callee.AsObject().Func

	if ctor && !fn.Ctor {
		return nil, vm.throwTypeErrorStatus(callee.Kind.String() + " is not a constructor")
	}

	if ctor && fn.Lambda != nil {
		protoVal, st := propertyGet(vm, callee.AsObject(), "prototype")
		if st != StatusOK {
			return nil, st
		}
		var proto *Object
		if protoVal.IsObjectCategory() {
			proto = protoVal.AsObject()
		}
		this = FromObject(NewObject(proto))
	}

	argsSlots := make([]Value, len(args)+1)
	argsSlots[0] = this
	copy(argsSlots[1:], args)

	frame := vm.allocFrame()
	frame.Ctor = ctor
	frame.Native = fn.Native != nil
	frame.Scopes[bytecode.ScopeArguments] = &Scope{Kind: bytecode.ScopeArguments, Slots: argsSlots}
	frame.Closures = fn.Closures
	frame.Callee = callee

	if fn.Lambda != nil {
		locals := make([]Value, fn.Lambda.NumLocals)
		for i := range locals {
			locals[i] = Undefined
		}
		frame.Scopes[bytecode.ScopeLocal] = &Scope{Kind: bytecode.ScopeLocal, Slots: locals}
		frame.PC = fn.Lambda.Entry
		frame.File = fn.Lambda.File
	}

	return frame, StatusOK
}

// allocFrame is the bump-stack allocation point. Go's own heap
// stands in for the arena; Size records ownership so the unwinder's
// "free only if size != 0" rule (Invariant 4) still has a concrete
// field to check.
func (vm *VM) allocFrame() *Frame {
	vm.stackSize++
	if vm.Config.Allocator != nil {
		vm.Config.Allocator.Alloc(frameAccountingSize)
	}
	return &Frame{Size: frameAccountingSize}
}

const frameAccountingSize = 1

func (vm *VM) freeFrame(f *Frame) {
	if f.Size == 0 {
		return // borrowed, not allocator-owned (Invariant 4)
	}
	vm.stackSize--
	if vm.Config.Allocator != nil {
		vm.Config.Allocator.Free(make([]byte, f.Size))
	}
}

// invoke transfers control's "Invocation": native
// callees run synchronously; script callees switch topFrame/activeFrame
// and resume dispatch at the lambda's entry PC.
func (vm *VM) invoke(frame *Frame, retvalDest bytecode.OperandDescriptor, retvalFrame *Frame) (controlSignal, Status) {
	fn := frame.Callee.AsObject().Func

	if fn.Native != nil {
		this := frame.This()
		args := frame.Scopes[bytecode.ScopeArguments].Slots[1:]
		var out Value
		st := fn.Native(vm, this, args, frame.Ctor, &out)
		vm.freeFrame(frame)
		if st == StatusError {
			return ctrlThrow, st
		}
		if dst := retvalFrame.Resolve(retvalDest); dst != nil {
			*dst = out
		}
		return ctrlContinue, StatusOK
	}

	frame.Previous = vm.topFrame
	frame.RetvalDest = retvalDest
	frame.RetvalFrame = retvalFrame
	frame.Chunk = vm.chunk
	vm.topFrame = frame
	vm.activeFrame = frame
	vm.frameDepth++
	if vm.frameDepth > vm.maxFrames() {
		vm.frameDepth--
		return ctrlThrow, vm.throwInternalError("Maximum call stack size exceeded")
	}
	return ctrlCall, StatusOK
}

func (vm *VM) maxFrames() int {
	if vm.Config.MaxFrames > 0 {
		return vm.Config.MaxFrames
	}
	return DefaultMaxFrames
}

// DefaultMaxFrames bounds recursion depth absent an explicit Config value.
const DefaultMaxFrames = 2048

// doReturn implements RETURN:
//  1. If constructor and v is not an object, substitute
//     v := ARGUMENTS[0] so a primitive return from a constructor yields
//     the new object (Invariant 3).
//  2. Restore the previous frame's scope pointers.
//  3. Write v into the slot named by the caller's saved retval
//     descriptor.
//  4. Free the callee frame (only if size != 0).
func (vm *VM) doReturn(frame *Frame, v Value) {
	if frame.Ctor && !v.IsObjectCategory() {
		v = frame.This() // ARGUMENTS[0]: the constructed `this`
	}
	// Invariant 3: the ARGUMENTS scope of a constructor call, on return
	// of a non_object, is reused as the returned object and must not be
	// released — so we simply never release it here; Go's GC reclaims
	// it once unreachable, matching "no GC strategy" being out of scope.

	vm.frameDepth--
	vm.topFrame = frame.Previous
	if vm.topFrame != nil && !vm.topFrame.Native {
		vm.activeFrame = vm.nearestScriptFrame(vm.topFrame)
	}

	if frame.RetvalFrame != nil {
		if dst := frame.RetvalFrame.Resolve(frame.RetvalDest); dst != nil {
			*dst = v
		}
	}
	vm.retval = v

	vm.freeFrame(frame)
}

func (vm *VM) nearestScriptFrame(f *Frame) *Frame {
	for f != nil && f.Native {
		f = f.Previous
	}
	return f
}

// controlSignal tells Interpret's outer loop what happened after a step.
type controlSignal uint8

const (
	ctrlContinue controlSignal = iota
	ctrlCall
	ctrlReturn
	ctrlThrow
	ctrlStop
	ctrlPreempt
)

// CallFunction is the embedder/ToPrimitive-facing synchronous call
// helper: it drives a nested Interpret loop to completion and returns
// the function's result. Used by ToPrimitive's valueOf/toString
// dispatch; FUNCTION_FRAME / METHOD_FRAME go through dispatchCall,
// frameCreate and invoke instead.
func (vm *VM) CallFunction(callee Value, this Value, args []Value, ctor bool) (Value, Status) {
	frame, st := vm.frameCreate(callee, this, args, ctor)
	if st != StatusOK {
		return Undefined, st
	}

	if frame.Native {
		out := Undefined
		fn := callee.AsObject().Func
		status := fn.Native(vm, this, args, ctor, &out)
		vm.freeFrame(frame)
		return out, status
	}

	savedTop, savedActive := vm.topFrame, vm.activeFrame
	frame.Previous = vm.topFrame
	frame.Chunk = vm.chunk
	vm.topFrame = frame
	vm.activeFrame = frame
	vm.frameDepth++

	status := vm.runUntilFrameReturns(frame)

	vm.topFrame, vm.activeFrame = savedTop, savedActive
	if status != StatusOK {
		return Undefined, status
	}
	return vm.retval, StatusOK
}

// runUntilFrameReturns drives dispatch until control returns past the
// given frame (used by CallFunction's nested invocation) or an
// exception escapes it.
func (vm *VM) runUntilFrameReturns(entry *Frame) Status {
	frame := entry
	for {
		signal, st := vm.step(frame)
		switch signal {
		case ctrlContinue:
			// frame.PC already advanced by step.
		case ctrlCall:
			frame = vm.topFrame
		case ctrlReturn:
			if frame == entry || vm.topFrame == entry.Previous {
				return StatusOK
			}
			frame = vm.topFrame
		case ctrlStop:
			return StatusOK
		case ctrlThrow:
			if !vm.unwind() {
				return StatusError
			}
			if vm.topFrame == entry.Previous {
				return StatusError
			}
			frame = vm.topFrame
		case ctrlPreempt:
			return st
		}
	}
}
