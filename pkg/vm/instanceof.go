package vm

// DefaultMaxPrototypeChainDepth bounds the __proto__ walk in instanceOf
// so a cyclic prototype chain cannot hang the VM.
const DefaultMaxPrototypeChainDepth = 4096

// instanceOf implements the instanceof operator: ctor must be a function
// (else TypeError); reads ctor.prototype, requires it be an object;
// walks obj.__proto__ looking for reference equality with
// ctor.prototype; false if obj is not object-category.
func instanceOf(vmState *VM, obj Value, ctor Value) (bool, Status) {
	if ctor.Kind != KindFunction {
		return false, vmState.throwTypeErrorStatus("Right-hand side of 'instanceof' is not callable")
	}

	protoVal, st := propertyGet(vmState, ctor.AsObject(), "prototype")
	if st != StatusOK {
		return false, st
	}
	if !protoVal.IsObjectCategory() {
		return false, vmState.throwTypeErrorStatus("Function has non-object prototype in instanceof check")
	}
	target := protoVal.AsObject()

	if !obj.IsObjectCategory() {
		return false, StatusOK
	}

	cur := obj.AsObject().Proto
	depth := vmState.maxPrototypeChainDepth()
	for i := 0; cur != nil && i < depth; i++ {
		if cur == target {
			return true, StatusOK
		}
		cur = cur.Proto
	}
	return false, StatusOK
}

func (v *VM) maxPrototypeChainDepth() int {
	if v.Config.MaxPrototypeChainDepth > 0 {
		return v.Config.MaxPrototypeChainDepth
	}
	return DefaultMaxPrototypeChainDepth
}
