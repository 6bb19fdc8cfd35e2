package vm

import "ecmavm/pkg/bytecode"

// step decodes and executes a single instruction at frame.PC, advancing
// the PC (for non-jumping handlers) or leaving it at a jump target (for
// jumping ones). It returns the control signal the outer loop uses to
// decide whether to keep stepping this frame, switch to a callee, unwind
// an exception, or stop.
func (vm *VM) step(frame *Frame) (controlSignal, Status) {
	if int(frame.PC) >= len(frame.Chunk.Code) {
		return ctrlStop, StatusOK
	}
	ins := &frame.Chunk.Code[frame.PC]
	op := ins.Op

	// Result-producing opcodes (op > NORET) write into Dest and always
	// fall through to the next instruction.
	if op.IsResultProducing() {
		v, st := vm.evalResult(frame, ins)
		if st == StatusError {
			return ctrlThrow, st
		}
		if dst := frame.Resolve(ins.Dest); dst != nil {
			*dst = v
		}
		frame.PC++
		return ctrlContinue, StatusOK
	}

	switch op {
	case bytecode.OpStop:
		return ctrlStop, StatusOK

	case bytecode.OpJump:
		frame.PC = uint32(int32(frame.PC) + ins.Offset)
		return ctrlContinue, StatusOK

	case bytecode.OpIfTrueJump:
		cond := frame.Resolve(ins.Operand2)
		if cond != nil && cond.Truthy() {
			frame.PC = uint32(int32(frame.PC) + ins.Offset)
		} else {
			frame.PC++
		}
		return ctrlContinue, StatusOK

	case bytecode.OpIfFalseJump:
		cond := frame.Resolve(ins.Operand2)
		if cond != nil && !cond.Truthy() {
			frame.PC = uint32(int32(frame.PC) + ins.Offset)
		} else {
			frame.PC++
		}
		return ctrlContinue, StatusOK

	case bytecode.OpIfEqualJump:
		a := frame.Resolve(ins.Operand2)
		b := frame.Resolve(ins.Operand3)
		if a != nil && b != nil && strictEqual(*a, *b) {
			frame.PC = uint32(int32(frame.PC) + ins.Offset)
		} else {
			frame.PC++
		}
		return ctrlContinue, StatusOK

	case bytecode.OpPropertySet:
		obj := frame.Resolve(ins.Operand2)
		val := frame.Resolve(ins.Operand3)
		if obj == nil || val == nil {
			frame.PC++
			return ctrlContinue, StatusOK
		}
		st := vm.propertySetValue(*obj, ins.Name, *val)
		if st == StatusError {
			return ctrlThrow, st
		}
		frame.PC++
		return ctrlContinue, StatusOK

	case bytecode.OpPropertyInit:
		obj := frame.Resolve(ins.Operand2)
		val := frame.Resolve(ins.Operand3)
		if obj == nil || val == nil || !obj.IsObjectCategory() {
			frame.PC++
			return ctrlContinue, StatusOK
		}
		st := propertyInit(vm, obj.AsObject(), ins.Name, *val)
		if st == StatusError {
			return ctrlThrow, st
		}
		frame.PC++
		return ctrlContinue, StatusOK

	case bytecode.OpReturn:
		v := Undefined
		if src := frame.Resolve(ins.Operand2); src != nil {
			v = *src
		}
		vm.doReturn(frame, v)
		return ctrlReturn, StatusOK

	case bytecode.OpFunctionFrame, bytecode.OpMethodFrame:
		return vm.dispatchCall(frame, ins, op == bytecode.OpMethodFrame)

	case bytecode.OpFunctionCall:
		// Resume a previously prepared call (kept for symmetry with
		// FUNCTION_FRAME/METHOD_FRAME; in this core the frame transition
		// already happened in dispatchCall, so FUNCTION_CALL at the
		// callee's own PC 0 is a no-op landing pad).
		frame.PC++
		return ctrlContinue, StatusOK

	case bytecode.OpPropertyNext:
		obj := frame.Resolve(ins.Operand2)
		iter := frame.Resolve(ins.Operand3)
		if obj == nil || iter == nil {
			frame.PC++
			return ctrlContinue, StatusOK
		}
		next, exhausted, st := propertyNext(vm, *obj, *iter)
		if st == StatusError {
			return ctrlThrow, st
		}
		if dst := frame.Resolve(ins.Dest); dst != nil {
			*dst = next
		}
		if !exhausted {
			frame.PC = uint32(int32(frame.PC) + ins.Offset)
		} else {
			frame.PC++
		}
		return ctrlContinue, StatusOK

	case bytecode.OpThis:
		if dst := frame.Resolve(ins.Dest); dst != nil {
			*dst = frame.This()
		}
		frame.PC++
		return ctrlContinue, StatusOK

	case bytecode.OpArguments:
		if dst := frame.Resolve(ins.Dest); dst != nil {
			*dst = vm.materializeArguments(frame)
		}
		frame.PC++
		return ctrlContinue, StatusOK

	case bytecode.OpTryStart:
		var excSlot, exitSlot *Value
		if ins.Operands >= bytecode.Operands1 {
			excSlot = frame.Resolve(ins.Operand2)
		}
		if ins.Operands >= bytecode.Operands2 {
			exitSlot = frame.Resolve(ins.Operand3)
		}
		tryStart(frame, excSlot, exitSlot, uint32(int32(frame.PC)+ins.Offset))
		frame.PC++
		return ctrlContinue, StatusOK

	case bytecode.OpThrow:
		v := Undefined
		if src := frame.Resolve(ins.Operand2); src != nil {
			v = *src
		}
		vm.currentException = v
		return ctrlThrow, StatusError

	case bytecode.OpTryBreak:
		exitSlot := frame.Resolve(ins.Operand2)
		if exitSlot != nil {
			tryBreak(exitSlot)
		}
		frame.PC = uint32(int32(frame.PC) + ins.Offset)
		return ctrlContinue, StatusOK

	case bytecode.OpTryContinue:
		exitSlot := frame.Resolve(ins.Operand2)
		if exitSlot != nil {
			tryContinue(exitSlot)
		}
		frame.PC = uint32(int32(frame.PC) + ins.Offset)
		return ctrlContinue, StatusOK

	case bytecode.OpTryEnd:
		tryEnd(frame)
		frame.PC++
		return ctrlContinue, StatusOK

	case bytecode.OpCatch:
		dst := frame.Resolve(ins.Operand2)
		noFinally := ins.Offset == 0
		vm.catchOp(frame, dst, noFinally, uint32(int32(frame.PC)+ins.Offset))
		frame.PC++
		return ctrlContinue, StatusOK

	case bytecode.OpFinally:
		excSlot := frame.Resolve(ins.Operand2)
		exitSlot := frame.Resolve(ins.Operand3)
		outcome, v := finallyOp(excSlot, exitSlot)
		switch outcome {
		case finallyRethrow:
			vm.currentException = v
			return ctrlThrow, StatusError
		case finallyReturn:
			vm.doReturn(frame, v)
			return ctrlReturn, StatusOK
		case finallyBreakJump:
			frame.PC = uint32(int32(frame.PC) + ins.BreakOffset)
			return ctrlContinue, StatusOK
		case finallyContinueJump:
			frame.PC = uint32(int32(frame.PC) + ins.ContinueOffset)
			return ctrlContinue, StatusOK
		default:
			frame.PC++
			return ctrlContinue, StatusOK
		}

	case bytecode.OpReferenceError:
		return ctrlThrow, vm.throwReferenceError(ins.Name, ins.File, ins.Line)

	default:
		return ctrlThrow, vm.throwInternalError("unknown opcode " + op.String())
	}
}

// propertySetValue dispatches PROPERTY_SET across the three addressable
// targets: plain objects/arrays, and primitive wrapper rejection (a
// write to a primitive's property is simply a no-op per loose-mode
// semantics; this core has no strict-mode distinction in scope).
func (vm *VM) propertySetValue(obj Value, key string, val Value) Status {
	if obj.Kind == KindArray {
		if idx, ok := ToIndex(key); ok {
			obj.AsObject().ArraySet(idx, val)
			return StatusOK
		}
	}
	if !obj.IsObjectCategory() {
		return StatusOK
	}
	return propertySet(vm, obj.AsObject(), key, val)
}

// materializeArguments lazily builds the array-like object ARGUMENTS
// exposes to script code, caching it on the frame.
func (vm *VM) materializeArguments(frame *Frame) Value {
	if frame.ArgumentsObject != nil {
		return *frame.ArgumentsObject
	}
	scope := frame.Scopes[bytecode.ScopeArguments]
	arr := NewArray(nil)
	if scope != nil {
		for i, v := range scope.Slots[1:] {
			arr.ArraySet(uint32(i), v)
		}
	}
	v := FromObject(arr)
	frame.ArgumentsObject = &v
	return v
}

// dispatchCall implements FUNCTION_FRAME / METHOD_FRAME: resolve the
// callee (and, for METHOD_FRAME, look it up as a property of the
// receiver), build arguments from consecutive operand slots, and hand
// off to frameCreate/invoke.
func (vm *VM) dispatchCall(frame *Frame, ins *bytecode.Instruction, method bool) (controlSignal, Status) {
	var callee, this Value

	if method {
		recv := frame.Resolve(ins.Operand2)
		if recv == nil {
			return ctrlThrow, vm.throwInternalError("method call with no receiver")
		}
		this = *recv
		if !this.IsObjectCategory() {
			return ctrlThrow, vm.throwTypeErrorStatus("cannot read properties of " + this.Kind.String())
		}
		fn, st := propertyGet(vm, this.AsObject(), ins.Name)
		if st != StatusOK {
			return ctrlThrow, st
		}
		callee = fn
	} else {
		c := frame.Resolve(ins.Operand2)
		if c == nil {
			return ctrlThrow, vm.throwInternalError("call with unresolved callee")
		}
		callee = *c
		this = Undefined
	}

	args := make([]Value, 0, ins.NArgs)
	for i := uint32(0); i < ins.NArgs; i++ {
		desc := bytecode.OperandDescriptor{Scope: ins.Operand3.Scope, Index: ins.Operand3.Index + i}
		if v := frame.Resolve(desc); v != nil {
			args = append(args, *v)
		} else {
			args = append(args, Undefined)
		}
	}

	callFrame, st := vm.frameCreate(callee, this, args, ins.Ctor)
	if st != StatusOK {
		return ctrlThrow, st
	}

	// Advance past the call instruction before handing off to the callee,
	// native or script: doReturn resumes this frame at frame.Previous
	// with whatever PC it finds here, so the caller must already be
	// pointed at the instruction after the call or it re-executes it.
	frame.PC++

	signal, st := vm.invoke(callFrame, ins.Dest, frame)
	if st != StatusOK {
		return ctrlThrow, st
	}
	return signal, StatusOK
}

// evalResult computes the value a result-producing opcode writes into
// Dest. Operand resolution failures (a descriptor naming a slot out of
// range) are treated as Undefined rather than panicking — the compiler
// that emits valid descriptors is out of scope, but dispatch still must
// not crash on a malformed stream.
func (vm *VM) evalResult(frame *Frame, ins *bytecode.Instruction) (Value, Status) {
	op := ins.Op
	get := func(d bytecode.OperandDescriptor) Value {
		if v := frame.Resolve(d); v != nil {
			return *v
		}
		return Undefined
	}

	switch op {
	case bytecode.OpMove:
		return get(ins.Operand2), StatusOK

	case bytecode.OpPropertyGet:
		obj := get(ins.Operand2)
		if obj.Kind == KindArray {
			if idx, ok := ToIndex(ins.Name); ok {
				v := obj.AsObject().ArrayGet(idx)
				if v.IsInvalid() {
					return Undefined, StatusOK
				}
				return v, StatusOK
			}
		}
		if !obj.IsObjectCategory() {
			return Undefined, StatusOK
		}
		return propertyGet(vm, obj.AsObject(), ins.Name)

	case bytecode.OpIncrement, bytecode.OpDecrement, bytecode.OpPostIncrement, bytecode.OpPostDecrement:
		slot := frame.Resolve(ins.Operand2)
		if slot == nil {
			return Undefined, StatusOK
		}
		n, st := ToNumber(vm, *slot)
		if st != StatusOK {
			return Undefined, st
		}
		old := Number(n)
		var next float64
		if op == bytecode.OpIncrement || op == bytecode.OpPostIncrement {
			next = n + 1
		} else {
			next = n - 1
		}
		*slot = Number(next)
		if op == bytecode.OpPostIncrement || op == bytecode.OpPostDecrement {
			return old, StatusOK
		}
		return Number(next), StatusOK

	case bytecode.OpTryReturn:
		v := get(ins.Operand2)
		return v, StatusOK

	case bytecode.OpAddition:
		return addition(vm, get(ins.Operand2), get(ins.Operand3))

	case bytecode.OpLess:
		return comparisonResult(vm, "LESS", get(ins.Operand2), get(ins.Operand3))
	case bytecode.OpGreater:
		return comparisonResult(vm, "GREATER", get(ins.Operand2), get(ins.Operand3))
	case bytecode.OpLessOrEqual:
		return comparisonResult(vm, "LESS_OR_EQUAL", get(ins.Operand2), get(ins.Operand3))
	case bytecode.OpGreaterOrEqual:
		return comparisonResult(vm, "GREATER_OR_EQUAL", get(ins.Operand2), get(ins.Operand3))

	case bytecode.OpEqual:
		b, st := looseEqual(vm, get(ins.Operand2), get(ins.Operand3))
		return Bool(b), st
	case bytecode.OpNotEqual:
		b, st := looseEqual(vm, get(ins.Operand2), get(ins.Operand3))
		return Bool(!b), st
	case bytecode.OpStrictEqual:
		return Bool(strictEqual(get(ins.Operand2), get(ins.Operand3))), StatusOK
	case bytecode.OpStrictNotEqual:
		return Bool(!strictEqual(get(ins.Operand2), get(ins.Operand3))), StatusOK

	case bytecode.OpSub:
		return numericBinary(vm, get(ins.Operand2), get(ins.Operand3), opSub)
	case bytecode.OpMul:
		return numericBinary(vm, get(ins.Operand2), get(ins.Operand3), opMul)
	case bytecode.OpDiv:
		return numericBinary(vm, get(ins.Operand2), get(ins.Operand3), opDiv)
	case bytecode.OpRem:
		return numericBinary(vm, get(ins.Operand2), get(ins.Operand3), opRem)
	case bytecode.OpExp:
		return numericBinary(vm, get(ins.Operand2), get(ins.Operand3), opExp)

	case bytecode.OpBitAnd:
		return bitwiseBinary(vm, get(ins.Operand2), get(ins.Operand3), opBitAnd)
	case bytecode.OpBitOr:
		return bitwiseBinary(vm, get(ins.Operand2), get(ins.Operand3), opBitOr)
	case bytecode.OpBitXor:
		return bitwiseBinary(vm, get(ins.Operand2), get(ins.Operand3), opBitXor)
	case bytecode.OpShl:
		return bitwiseBinary(vm, get(ins.Operand2), get(ins.Operand3), opShl)
	case bytecode.OpShr:
		return bitwiseBinary(vm, get(ins.Operand2), get(ins.Operand3), opShr)
	case bytecode.OpUshr:
		return ushr(vm, get(ins.Operand2), get(ins.Operand3))

	case bytecode.OpPlus:
		n, st := ToNumber(vm, get(ins.Operand2))
		return Number(n), st
	case bytecode.OpNegation:
		n, st := ToNumber(vm, get(ins.Operand2))
		return Number(-n), st
	case bytecode.OpBitwiseNot:
		return bitwiseNot(vm, get(ins.Operand2))
	case bytecode.OpLogicalNot:
		return Bool(!get(ins.Operand2).Truthy()), StatusOK

	case bytecode.OpTypeof:
		return String(typeofValue(get(ins.Operand2))), StatusOK

	case bytecode.OpVoid:
		_ = get(ins.Operand2)
		return Undefined, StatusOK

	case bytecode.OpDelete:
		obj := get(ins.Operand2)
		if !obj.IsObjectCategory() {
			return Bool(true), StatusOK
		}
		st := propertyDelete(vm, obj.AsObject(), ins.Name)
		return vm.retval, st

	case bytecode.OpObject:
		return FromObject(NewObject(nil)), StatusOK

	case bytecode.OpArray:
		arr := NewArray(nil)
		if ins.Length > 0 {
			arr.Array.Elements = make([]Value, ins.Length)
			for i := range arr.Array.Elements {
				arr.Array.Elements[i] = Invalid
			}
			arr.Array.Length = ins.Length
		}
		return FromObject(arr), StatusOK

	case bytecode.OpFunction:
		return vm.instantiateFunction(frame, ins)

	case bytecode.OpRegexp:
		return vm.instantiateRegexp(frame, ins)

	case bytecode.OpObjectCopy:
		return objectCopy(get(ins.Operand2)), StatusOK

	case bytecode.OpTemplateLiteral:
		a, st := ToString(vm, get(ins.Operand2))
		if st != StatusOK {
			return Undefined, st
		}
		b, st := ToString(vm, get(ins.Operand3))
		if st != StatusOK {
			return Undefined, st
		}
		return String(a + b), StatusOK

	case bytecode.OpInstanceOf:
		b, st := instanceOf(vm, get(ins.Operand2), get(ins.Operand3))
		return Bool(b), st

	case bytecode.OpPropertyIn:
		obj := get(ins.Operand3)
		if !obj.IsObjectCategory() {
			return Undefined, vm.throwTypeErrorStatus("cannot use 'in' operator on a non-object")
		}
		key := get(ins.Operand2)
		keyStr, st := ToString(vm, key)
		if st != StatusOK {
			return Undefined, st
		}
		return Bool(propertyIn(obj.AsObject(), keyStr)), StatusOK

	case bytecode.OpPropertyDelete:
		obj := get(ins.Operand2)
		if !obj.IsObjectCategory() {
			return Bool(true), StatusOK
		}
		keyStr, st := ToString(vm, get(ins.Operand3))
		if st != StatusOK {
			return Undefined, st
		}
		st = propertyDelete(vm, obj.AsObject(), keyStr)
		return vm.retval, st

	case bytecode.OpPropertyForeach:
		obj := get(ins.Operand2)
		st := propertyForeach(vm, obj)
		return vm.retval, st

	case bytecode.OpTestIfTrue:
		return Bool(get(ins.Operand2).Truthy()), StatusOK
	case bytecode.OpTestIfFalse:
		return Bool(!get(ins.Operand2).Truthy()), StatusOK
	}

	return Undefined, vm.throwInternalError("unhandled result opcode " + op.String())
}

// instantiateFunction implements the FUNCTION opcode: build a Lambda
// from the chunk's function pool and wrap it in a closure capturing the
// defining frame's closure slots; its LOCAL slots are not captured. This core does
// not perform capture analysis (a compiler concern, out of scope); it
// captures the defining frame's entire CLOSURE scope, which is the
// simplest faithful rendition of "closures reference the defining
// frame's scope" the dispatch surface can exercise on its own.
func (vm *VM) instantiateFunction(frame *Frame, ins *bytecode.Instruction) (Value, Status) {
	if int(ins.Lambda) >= len(frame.Chunk.Functions) {
		return Undefined, vm.throwInternalError("function index out of range")
	}
	proto := frame.Chunk.Functions[ins.Lambda]
	lambda := &Lambda{
		Name:         proto.Name,
		Entry:        proto.Entry,
		NumArguments: proto.NumArguments,
		NumLocals:    proto.NumLocals,
		File:         proto.File,
	}

	var closures []*Value
	if cs := frame.Scopes[bytecode.ScopeClosure]; cs != nil {
		closures = make([]*Value, len(cs.Slots))
		for i := range cs.Slots {
			closures[i] = &cs.Slots[i]
		}
	}

	fnObj := NewScriptFunction(nil, lambda, closures)
	proto2 := NewObject(nil)
	propertyInit(vm, fnObj, "prototype", FromObject(proto2))
	return FromObject(fnObj), StatusOK
}

// instantiateRegexp implements the REGEXP opcode: build a regexp value
// around the chunk's pattern pool entry, deferring compilation to first
// use (see regexp.go).
func (vm *VM) instantiateRegexp(frame *Frame, ins *bytecode.Instruction) (Value, Status) {
	if int(ins.Pattern) >= len(frame.Chunk.Patterns) {
		return Undefined, vm.throwInternalError("pattern index out of range")
	}
	p := frame.Chunk.Patterns[ins.Pattern]
	data := newRegexpData(p.Source, p.Flags)
	return FromObject(NewRegExp(nil, data)), StatusOK
}
