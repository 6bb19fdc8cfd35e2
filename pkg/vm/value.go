// Package vm implements an ECMAScript-family bytecode interpreter core:
// the value model, frame/scope manager, property subsystem, exception
// machinery, and dispatch loop. Its operand addressing is
// descriptor-based rather than fixed-register, and its object model
// carries external/data/object_value kinds, PROPERTY_HANDLER accessors,
// and exit-value-encoded try/finally control flow — see DESIGN.md.
package vm

import "ecmavm/internal/strval"

// Kind is the tag of a Value. The numeric ordering is load bearing: all
// primitive kinds (Undefined..External) sort below all object-category
// kinds (Object..ObjectValue), and Number < String < object-category —
// both required by the loose-equality kind promotion below.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindData     // opaque external datum
	KindExternal // host-bridged object with a vtable of callbacks

	// Object-category kinds.
	KindObject
	KindArray
	KindFunction
	KindRegExp
	KindDate
	KindObjectValue // boxed primitive

	// Internal markers, never compared via the ordering above.
	KindInvalid
	KindWhiteout
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindData:
		return "data"
	case KindExternal:
		return "external"
	case KindObject, KindObjectValue:
		return "object"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindRegExp:
		return "regexp"
	case KindDate:
		return "date"
	case KindInvalid:
		return "invalid"
	case KindWhiteout:
		return "whiteout"
	default:
		return "unknown"
	}
}

// IsObjectCategory reports whether k is one of the object-category kinds
// (object, array, function, regexp, date, object_value).
func (k Kind) IsObjectCategory() bool {
	return k >= KindObject && k <= KindObjectValue
}

// IsPrimitive reports whether k is a primitive kind: all primitive kinds
// sort numerically below all object kinds. Invalid/Whiteout are internal
// sentinels, never primitive.
func (k Kind) IsPrimitive() bool {
	return k <= KindExternal
}

// ExternalVTable is the host-bridged callback surface for KindExternal
// values.
type ExternalVTable struct {
	Foreach func(vm *VM, ext *ExternalValue, retval *Value) Status
	Next    func(vm *VM, ext *ExternalValue, iter interface{}, retval *Value) Status
	Handler func(vm *VM, ext *ExternalValue, setterOrNil *Value, retval *Value) Status
}

// DataValue is the payload for KindData: an opaque external datum the
// core passes through without interpreting.
type DataValue struct {
	Tag string
	Ptr interface{}
}

// ExternalValue is the payload for KindExternal: a host-bridged object.
type ExternalValue struct {
	VTable ExternalVTable
	Handle interface{}
}

// Value is the tagged variant backing every runtime value. Primitive
// payloads are stored inline; object-category values carry a reference
// to a heap Object entity.
type Value struct {
	Kind Kind
	as   payload
}

type payload struct {
	boolean  bool
	number   float64
	str      strval.String
	obj      *Object
	data     *DataValue
	external *ExternalValue
}

// --- Constructors ---

var Undefined = Value{Kind: KindUndefined}
var Null = Value{Kind: KindNull}
var Invalid = Value{Kind: KindInvalid}
var Whiteout = Value{Kind: KindWhiteout}

func Bool(b bool) Value {
	v := Value{Kind: KindBoolean}
	v.as.boolean = b
	return v
}

func Number(n float64) Value {
	v := Value{Kind: KindNumber}
	v.as.number = n
	return v
}

func String(s string) Value {
	v := Value{Kind: KindString}
	v.as.str = strval.NewString(s)
	return v
}

func ByteString(b []byte) Value {
	v := Value{Kind: KindString}
	v.as.str = strval.NewByteString(b)
	return v
}

func Data(tag string, ptr interface{}) Value {
	v := Value{Kind: KindData}
	v.as.data = &DataValue{Tag: tag, Ptr: ptr}
	return v
}

func External(vt ExternalVTable, handle interface{}) Value {
	v := Value{Kind: KindExternal}
	v.as.external = &ExternalValue{VTable: vt, Handle: handle}
	return v
}

// FromObject wraps an Object entity in a Value whose Kind mirrors the
// object's own Kind.
func FromObject(o *Object) Value {
	return Value{Kind: o.Kind, as: payload{obj: o}}
}

// --- Accessors / type predicates ---

func (v Value) AsBool() bool             { return v.as.boolean }
func (v Value) AsNumber() float64        { return v.as.number }
func (v Value) AsRawString() strval.String { return v.as.str }
func (v Value) AsString() string         { return v.as.str.String() }
func (v Value) AsData() *DataValue       { return v.as.data }
func (v Value) AsExternal() *ExternalValue { return v.as.external }
func (v Value) AsObject() *Object        { return v.as.obj }

func (v Value) IsUndefined() bool { return v.Kind == KindUndefined }
func (v Value) IsNull() bool      { return v.Kind == KindNull }
func (v Value) IsNullish() bool   { return v.Kind == KindUndefined || v.Kind == KindNull }
func (v Value) IsInvalid() bool   { return v.Kind == KindInvalid }
func (v Value) IsObjectCategory() bool { return v.Kind.IsObjectCategory() }
func (v Value) IsPrimitive() bool      { return v.Kind.IsPrimitive() }
func (v Value) IsCallable() bool       { return v.Kind == KindFunction }

// Truthy implements ECMAScript ToBoolean for the TEST_IF_TRUE/FALSE and
// IF_TRUE_JUMP/IF_FALSE_JUMP opcode family.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.as.boolean
	case KindNumber:
		return v.as.number != 0 && !isNaN(v.as.number)
	case KindString:
		return len(v.as.str.Bytes) > 0
	default:
		return true // every object-category, data, and external value is truthy
	}
}

func isNaN(f float64) bool { return f != f }

// concatRaw applies the string concatenation rule to the raw
// byte/length representation of two string values.
func concatRaw(a, b Value) strval.String {
	return strval.Concat(a.as.str, b.as.str)
}
