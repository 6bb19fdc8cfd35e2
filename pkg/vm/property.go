package vm

// TriState models an attribute that can be explicitly set, explicitly
// false, or left unset.
type TriState uint8

const (
	TriUnset TriState = iota
	TriTrue
	TriFalse
)

// Bool resolves the tri-state to its effective boolean, with unset
// defaulting to true (the default attributes a freshly literal-inited
// property receives).
func (t TriState) Bool() bool { return t != TriFalse }

// PropTag distinguishes ordinary data properties from the accessor/
// external/tombstone kinds.
type PropTag uint8

const (
	PropOrdinary PropTag = iota
	PropHandler          // invokes a host-supplied accessor
	PropRef              // points at an external value slot
	PropWhiteout         // logically deleted
)

// PropertyHandlerFunc is the host-supplied accessor signature:
// (vm, object, setterValueOrNil, retval) -> status.
type PropertyHandlerFunc func(vm *VM, obj *Object, setterOrNil *Value, retval *Value) Status

// Property is one entry of an object's own-property hash.
type Property struct {
	Key          string
	Value        Value
	Writable     TriState
	Enumerable   TriState
	Configurable TriState
	Tag          PropTag
	Handler      PropertyHandlerFunc
	Ref          *Value
}

// IsDataDescriptor reports whether p is a data descriptor: true when
// writable is unset or its value is valid.
func (p *Property) IsDataDescriptor() bool {
	return p.Writable == TriUnset || !p.Value.IsInvalid()
}

// PropertyTable is an object's own-property store: an insertion-ordered
// slice plus a name index, so enumeration preserves insertion order and
// whiteout tombstones preserve hash layout without disturbing the
// position of surviving keys.
type PropertyTable struct {
	order []*Property
	index map[string]int
}

func NewPropertyTable() *PropertyTable {
	return &PropertyTable{index: make(map[string]int)}
}

// Lookup returns the own property for key, or nil if absent or
// tombstoned.
func (t *PropertyTable) Lookup(key string) *Property {
	i, ok := t.index[key]
	if !ok {
		return nil
	}
	p := t.order[i]
	if p.Tag == PropWhiteout {
		return nil
	}
	return p
}

// lookupRaw returns the slot even if it is a whiteout tombstone, used by
// propertyDelete to tell a tombstoned key from an absent one. A
// tombstoned key is resurrected in place by Insert, which reuses the
// key's existing index entry.
func (t *PropertyTable) lookupRaw(key string) *Property {
	if i, ok := t.index[key]; ok {
		return t.order[i]
	}
	return nil
}

// Insert adds or replaces the own property at key, preserving its
// original insertion position if one already existed.
func (t *PropertyTable) Insert(p *Property) {
	if i, ok := t.index[p.Key]; ok {
		t.order[i] = p
		return
	}
	t.index[p.Key] = len(t.order)
	t.order = append(t.order, p)
}

// EnumerableOwnKeys returns own enumerable keys in insertion order,
// skipping whiteouts.
func (t *PropertyTable) EnumerableOwnKeys() []string {
	keys := make([]string, 0, len(t.order))
	for _, p := range t.order {
		if p.Tag != PropWhiteout && p.Enumerable.Bool() {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// --- Property subsystem operations ---

// propertyGet walks obj then its prototype chain. A PROPERTY_HANDLER
// along the chain is invoked with (obj, nil, &retval); its result
// replaces the looked-up value. Missing keys return Undefined.
func propertyGet(vmState *VM, obj *Object, key string) (Value, Status) {
	cur := obj
	for cur != nil {
		if p := cur.Props.Lookup(key); p != nil {
			switch p.Tag {
			case PropHandler:
				var out Value
				st := p.Handler(vmState, obj, nil, &out)
				return out, st
			case PropRef:
				if p.Ref != nil {
					return *p.Ref, StatusOK
				}
				return Undefined, StatusOK
			default:
				return p.Value, StatusOK
			}
		}
		if cur.Shared != nil {
			if p := cur.Shared.Props.Lookup(key); p != nil && p.Tag == PropHandler {
				var out Value
				st := p.Handler(vmState, obj, nil, &out)
				return out, st
			}
		}
		cur = cur.Proto
	}
	return Undefined, StatusOK
}

// propertySet writes into the own hash; if the key matches an inherited
// PROPERTY_HANDLER, the handler is invoked with (obj, &v, nil) instead;
// non-writable properties fail with TypeError.
func propertySet(vmState *VM, obj *Object, key string, v Value) Status {
	if existing := obj.Props.Lookup(key); existing != nil {
		if existing.Tag == PropHandler {
			return existing.Handler(vmState, obj, &v, nil)
		}
		if existing.Tag == PropRef {
			if existing.Ref != nil {
				*existing.Ref = v
			}
			return StatusOK
		}
		if !existing.Writable.Bool() {
			return vmState.ThrowTypeError("Cannot assign to read only property '" + key + "'")
		}
		existing.Value = v
		return StatusOK
	}

	// Inherited PROPERTY_HANDLER intercepts ordinary assignment too.
	for cur := obj.Proto; cur != nil; cur = cur.Proto {
		if p := cur.Props.Lookup(key); p != nil && p.Tag == PropHandler {
			return p.Handler(vmState, obj, &v, nil)
		}
		if cur.Shared != nil {
			if p := cur.Shared.Props.Lookup(key); p != nil && p.Tag == PropHandler {
				return p.Handler(vmState, obj, &v, nil)
			}
		}
	}

	if !obj.Extensible {
		return vmState.ThrowTypeError("Cannot add property '" + key + "', object is not extensible")
	}
	obj.Props.Insert(&Property{
		Key: key, Value: v,
		Writable: TriTrue, Enumerable: TriTrue, Configurable: TriTrue,
		Tag: PropOrdinary,
	})
	return StatusOK
}

// propertyInit is the literal-context variant of property assignment:
// arrays extend contiguously by index; objects defer to an inherited
// handler if one exists for the key, else insert/replace a
// freshly-allocated enumerable/writable/configurable-by-default property.
func propertyInit(vmState *VM, obj *Object, key string, v Value) Status {
	if obj.Kind == KindArray {
		idx, ok := ToIndex(key)
		if ok {
			obj.ArraySet(idx, v)
			return StatusOK
		}
		// Non-index keys on an array fall through to ordinary object
		// literal semantics below.
	}

	for cur := obj.Proto; cur != nil; cur = cur.Proto {
		if p := cur.Props.Lookup(key); p != nil && p.Tag == PropHandler {
			return p.Handler(vmState, obj, &v, nil)
		}
	}

	obj.Props.Insert(&Property{
		Key: key, Value: v,
		Writable: TriTrue, Enumerable: TriTrue, Configurable: TriTrue,
		Tag: PropOrdinary,
	})
	return StatusOK
}

// propertyDelete removes an own property. Always writes true to
// vm.retval on success; returns true silently for non-existent keys.
func propertyDelete(vmState *VM, obj *Object, key string) Status {
	p := obj.Props.lookupRaw(key)
	if p == nil || p.Tag == PropWhiteout {
		vmState.retval = Bool(true)
		return StatusOK
	}
	if !p.Configurable.Bool() {
		return vmState.ThrowTypeError("Cannot delete property '" + key + "'")
	}

	switch p.Tag {
	case PropHandler:
		st := p.Handler(vmState, obj, nil, nil)
		if st != StatusOK {
			return st
		}
	case PropRef:
		if p.Ref != nil {
			*p.Ref = Invalid
		}
	}

	p.Tag = PropWhiteout
	p.Value = Whiteout
	vmState.retval = Bool(true)
	return StatusOK
}

// propertyIn reports whether a data-descriptor or handler property
// exists own-or-inherited on obj (the `in` operator); any entry of a
// shared hash along the chain also counts. The caller is
// responsible for the TypeError when the left operand isn't an object.
func propertyIn(obj *Object, key string) bool {
	for cur := obj; cur != nil; cur = cur.Proto {
		if p := cur.Props.Lookup(key); p != nil {
			return p.IsDataDescriptor() || p.Tag == PropHandler
		}
		if cur.Shared != nil {
			if p := cur.Shared.Props.Lookup(key); p != nil {
				return true
			}
		}
	}
	return false
}

// typeofValue implements typeof table.
func typeofValue(v Value) string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "object" // ECMA-mandated; do not collapse into undefined.
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindData:
		return "data"
	case KindExternal:
		return "external"
	default:
		return "object" // any other object-category kind
	}
}
