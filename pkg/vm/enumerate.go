package vm

// PropertyIteratorState is the enumeration state owned by a
// PROPERTY_FOREACH/PROPERTY_NEXT opcode pair: an index plus a snapshot
// of the object's enumerable own keys, freed when exhausted.
type PropertyIteratorState struct {
	Index uint32
	Keys  []string
}

const iteratorStateTag = "property-iterator"
const externalIteratorTag = "external-iterator"

// propertyForeach implements the PROPERTY_FOREACH enumeration protocol
// start. For external objects with a foreach host callback, it delegates and
// stores an external iterator handle in retval. Otherwise it snapshots
// the object's enumerable own keys in insertion order.
func propertyForeach(vmState *VM, obj Value) Status {
	if obj.Kind == KindExternal {
		ext := obj.AsExternal()
		if ext.VTable.Foreach != nil {
			var retval Value
			st := ext.VTable.Foreach(vmState, ext, &retval)
			vmState.retval = retval
			return st
		}
	}

	if !obj.IsObjectCategory() {
		vmState.retval = Data(iteratorStateTag, &PropertyIteratorState{})
		return StatusOK
	}

	state := &PropertyIteratorState{Keys: obj.AsObject().Props.EnumerableOwnKeys()}
	vmState.retval = Data(iteratorStateTag, state)
	return StatusOK
}

// propertyNext implements PROPERTY_NEXT: advances the
// iterator, returning the next key/handle or signalling exhaustion.
// exhausted is true when the internal iterator state was freed (the
// caller falls through rather than jumping).
func propertyNext(vmState *VM, obj Value, iter Value) (next Value, exhausted bool, st Status) {
	if obj.Kind == KindExternal {
		ext := obj.AsExternal()
		if ext.VTable.Next != nil {
			var handle interface{}
			if iter.Kind == KindData && iter.AsData() != nil {
				handle = iter.AsData().Ptr
			}
			var retval Value
			status := ext.VTable.Next(vmState, ext, handle, &retval)
			switch status {
			case StatusOK:
				return retval, false, StatusOK
			case StatusDone:
				return Undefined, true, StatusOK
			default:
				return Undefined, false, status
			}
		}
	}

	if iter.Kind != KindData || iter.AsData() == nil {
		return Undefined, true, StatusOK
	}
	state, ok := iter.AsData().Ptr.(*PropertyIteratorState)
	if !ok || state == nil {
		return Undefined, true, StatusOK
	}
	if state.Index < uint32(len(state.Keys)) {
		key := state.Keys[state.Index]
		state.Index++
		return String(key), false, StatusOK
	}
	return Undefined, true, StatusOK // exhausted: caller frees the state
}
