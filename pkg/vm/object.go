package vm

// SharedHash is the per-kind table of inherited handler-properties
// consulted during property lookup ("shared hash"), e.g. the built-in
// prototype methods registered by the embedder for a given
// object-category kind. It is a thin, reference-identity-compared
// wrapper so multiple objects of the same kind can share one table
// without the core needing to know what built-in methods look like.
type SharedHash struct {
	Name  string
	Props *PropertyTable
}

// FuncData is the function-specific payload of an Object entity.
type FuncData struct {
	Native     NativeFunc // non-nil for native functions
	Ctor       bool       // may be invoked with `new`
	ArgsOffset int        // index into ARGUMENTS scope where real args begin
	Closures   []*Value   // captured lexical scope
	Lambda     *Lambda    // non-nil for script functions
}

// Lambda is a compiled function body distinct from the Value that wraps it.
type Lambda struct {
	Name         string
	Entry        uint32 // PC of the function body within Code
	NumArguments int
	NumLocals    int
	File         string
}

// NativeFunc is a host callback invoked synchronously for a native
// function call.
type NativeFunc func(vm *VM, this Value, args []Value, ctor bool, retval *Value) Status

// ArrayData is the array-specific payload.
type ArrayData struct {
	Elements []Value
	Length   uint32
}

// RegexpData wraps a compiled pattern handle. The concrete engine
// (github.com/dlclark/regexp2, per its dependency) is reached
// through this narrow struct so the rest of the core never imports
// regexp2 directly — see regexp.go.
type RegexpData struct {
	Source  string
	Flags   string
	Compile func() (CompiledPattern, error)
	handle  CompiledPattern
}

// CompiledPattern is the narrow surface the core needs from a compiled
// regular expression (just enough to back the REGEXP opcode and an
// external `exec` host hook; the actual matching algorithm is an
// out-of-scope built-in).
type CompiledPattern interface {
	MatchString(s string) (bool, error)
}

func (r *RegexpData) ensureCompiled() error {
	if r.handle != nil {
		return nil
	}
	if r.Compile == nil {
		return nil
	}
	h, err := r.Compile()
	if err != nil {
		return err
	}
	r.handle = h
	return nil
}

// Test reports whether s matches the pattern, compiling it lazily.
func (r *RegexpData) Test(s string) (bool, error) {
	if err := r.ensureCompiled(); err != nil {
		return false, err
	}
	if r.handle == nil {
		return false, nil
	}
	return r.handle.MatchString(s)
}

// DateData is the date-specific payload: milliseconds since epoch.
type DateData struct {
	EpochMillis float64
}

// Object is the heap entity backing every object-category Value.
// Fields: an own-property hash, a prototype reference, a shared-hash
// reference, and type-specific payload.
type Object struct {
	Kind  Kind // one of KindObject, KindArray, KindFunction, KindRegExp, KindDate, KindObjectValue
	Props *PropertyTable
	Proto *Object // nullable (__proto__)
	Shared *SharedHash

	Array  *ArrayData  // valid when Kind == KindArray
	Func   *FuncData   // valid when Kind == KindFunction
	Regexp *RegexpData // valid when Kind == KindRegExp
	Date   *DateData   // valid when Kind == KindDate
	Boxed  *Value      // valid when Kind == KindObjectValue

	Extensible bool
}

// NewObject creates a plain object with the given (possibly nil)
// prototype.
func NewObject(proto *Object) *Object {
	return &Object{
		Kind:       KindObject,
		Props:      NewPropertyTable(),
		Proto:      proto,
		Extensible: true,
	}
}

// NewArray creates an empty array object.
func NewArray(proto *Object) *Object {
	return &Object{
		Kind:       KindArray,
		Props:      NewPropertyTable(),
		Proto:      proto,
		Array:      &ArrayData{},
		Extensible: true,
	}
}

// NewNativeFunction creates a function object wrapping a host callback.
func NewNativeFunction(proto *Object, name string, ctor bool, fn NativeFunc) *Object {
	return &Object{
		Kind:       KindFunction,
		Props:      NewPropertyTable(),
		Proto:      proto,
		Extensible: true,
		Func: &FuncData{
			Native: fn,
			Ctor:   ctor,
		},
	}
}

// NewScriptFunction creates a function object wrapping a compiled Lambda.
func NewScriptFunction(proto *Object, lambda *Lambda, closures []*Value) *Object {
	return &Object{
		Kind:       KindFunction,
		Props:      NewPropertyTable(),
		Proto:      proto,
		Extensible: true,
		Func: &FuncData{
			Ctor:     true,
			Lambda:   lambda,
			Closures: closures,
		},
	}
}

// NewRegExp creates a regexp object around the given pattern data.
func NewRegExp(proto *Object, data *RegexpData) *Object {
	return &Object{
		Kind:       KindRegExp,
		Props:      NewPropertyTable(),
		Proto:      proto,
		Extensible: true,
		Regexp:     data,
	}
}

// NewBoxedPrimitive creates an object_value wrapping a primitive.
func NewBoxedPrimitive(proto *Object, boxed Value) *Object {
	b := boxed
	return &Object{
		Kind:       KindObjectValue,
		Props:      NewPropertyTable(),
		Proto:      proto,
		Extensible: true,
		Boxed:      &b,
	}
}

// ArrayGet returns element i, or Invalid if i falls in a hole or is out
// of range entirely.
func (o *Object) ArrayGet(i uint32) Value {
	if o.Array == nil || i >= uint32(len(o.Array.Elements)) {
		return Invalid
	}
	return o.Array.Elements[i]
}

// ArraySet extends the array contiguously, filling any gap with Invalid
// markers.
func (o *Object) ArraySet(i uint32, v Value) {
	a := o.Array
	for uint32(len(a.Elements)) <= i {
		a.Elements = append(a.Elements, Invalid)
	}
	a.Elements[i] = v
	if i+1 > a.Length {
		a.Length = i + 1
	}
}

// objectCopy implements OBJECT_COPY: object/function values clone the
// outer wrapper and retain the underlying entity; primitives copy by
// value.
func objectCopy(v Value) Value {
	if !v.IsObjectCategory() {
		return v // primitives copy by value, which Go already does
	}
	// Clone the outer wrapper: a new Object header pointing at the same
	// payload structures (Props, Array, Func, ...), i.e. retaining the
	// underlying entity rather than deep-copying it.
	src := v.AsObject()
	clone := *src
	return FromObject(&clone)
}
