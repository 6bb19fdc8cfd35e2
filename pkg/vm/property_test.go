package vm

import "testing"

func TestPropertyInitThenGet(t *testing.T) {
	obj := NewObject(nil)
	propertyInit(nil, obj, "a", Number(1))
	propertyInit(nil, obj, "b", Number(2))

	v, st := propertyGet(nil, obj, "a")
	if st != StatusOK || v.AsNumber() != 1 {
		t.Fatalf("propertyGet(a) = %v, %v", v, st)
	}
	v, st = propertyGet(nil, obj, "missing")
	if st != StatusOK || !v.IsUndefined() {
		t.Fatalf("propertyGet(missing) = %v, %v, want Undefined", v, st)
	}
}

func TestEnumerableOwnKeysPreservesInsertionOrder(t *testing.T) {
	obj := NewObject(nil)
	propertyInit(nil, obj, "z", Number(1))
	propertyInit(nil, obj, "a", Number(2))
	propertyInit(nil, obj, "m", Number(3))

	keys := obj.Props.EnumerableOwnKeys()
	want := []string{"z", "a", "m"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestPropertyDeleteThenResurrectPreservesLayout(t *testing.T) {
	obj := NewObject(nil)
	propertyInit(nil, obj, "a", Number(1))
	propertyInit(nil, obj, "b", Number(2))

	testVM := &VM{currentException: Invalid}
	st := propertyDelete(testVM, obj, "a")
	if st != StatusOK || !testVM.retval.AsBool() {
		t.Fatalf("propertyDelete(a) = %v", st)
	}

	if _, ok := obj.Props.index["a"]; !ok {
		t.Fatalf("whiteout tombstone should keep the index slot")
	}
	if v, _ := propertyGet(testVM, obj, "a"); !v.IsUndefined() {
		t.Errorf("deleted key should read back as undefined, got %v", v)
	}

	// Resurrect: propertySet on a tombstoned key should reuse the slot.
	st = propertySet(testVM, obj, "a", Number(9))
	if st != StatusOK {
		t.Fatalf("propertySet after delete failed: %v", st)
	}
	keys := obj.Props.EnumerableOwnKeys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("resurrection should preserve original position, got %v", keys)
	}
}

func TestPropertyDeleteNonConfigurableFails(t *testing.T) {
	obj := NewObject(nil)
	obj.Props.Insert(&Property{
		Key: "frozen", Value: Number(1),
		Writable: TriTrue, Enumerable: TriTrue, Configurable: TriFalse,
		Tag: PropOrdinary,
	})
	testVM := &VM{currentException: Invalid}
	st := propertyDelete(testVM, obj, "frozen")
	if st != StatusError {
		t.Fatalf("expected TypeError status deleting non-configurable property, got %v", st)
	}
}

func TestPropertySetNonWritableFails(t *testing.T) {
	obj := NewObject(nil)
	obj.Props.Insert(&Property{
		Key: "ro", Value: Number(1),
		Writable: TriFalse, Enumerable: TriTrue, Configurable: TriTrue,
		Tag: PropOrdinary,
	})
	testVM := &VM{currentException: Invalid}
	st := propertySet(testVM, obj, "ro", Number(2))
	if st != StatusError {
		t.Fatalf("expected TypeError status, got %v", st)
	}
}

func TestPropertyHandlerInterceptsGetAndSet(t *testing.T) {
	var sawSet Value
	obj := NewObject(nil)
	obj.Props.Insert(&Property{
		Key: "h",
		Tag: PropHandler,
		Handler: func(vmState *VM, o *Object, setterOrNil *Value, retval *Value) Status {
			if setterOrNil != nil {
				sawSet = *setterOrNil
				return StatusOK
			}
			*retval = Number(99)
			return StatusOK
		},
	})

	v, st := propertyGet(nil, obj, "h")
	if st != StatusOK || v.AsNumber() != 99 {
		t.Fatalf("handler get = %v, %v", v, st)
	}
	st = propertySet(nil, obj, "h", String("set-value"))
	if st != StatusOK || sawSet.AsString() != "set-value" {
		t.Fatalf("handler set did not observe value: %v %v", st, sawSet)
	}
}

func TestPropertyInitOnArrayUsesIndexFastPath(t *testing.T) {
	arr := NewArray(nil)
	propertyInit(nil, arr, "0", String("x"))
	propertyInit(nil, arr, "length", Number(1)) // non-index key falls through

	if got := arr.ArrayGet(0); got.AsString() != "x" {
		t.Errorf("index 0 = %v, want x", got)
	}
	if p := arr.Props.Lookup("length"); p == nil {
		t.Errorf("non-index key should be stored as an ordinary property")
	}
}

func TestPropertyInOwnAndInherited(t *testing.T) {
	proto := NewObject(nil)
	propertyInit(nil, proto, "inherited", Number(1))
	obj := NewObject(proto)
	propertyInit(nil, obj, "own", Number(2))

	if !propertyIn(obj, "own") {
		t.Errorf("expected own property to satisfy 'in'")
	}
	if !propertyIn(obj, "inherited") {
		t.Errorf("expected inherited property to satisfy 'in'")
	}
	if propertyIn(obj, "nope") {
		t.Errorf("expected missing key to fail 'in'")
	}
}

func TestTypeofTable(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "object"},
		{Bool(true), "boolean"},
		{Number(1), "number"},
		{String("x"), "string"},
		{FromObject(NewObject(nil)), "object"},
		{FromObject(NewArray(nil)), "object"},
		{FromObject(NewNativeFunction(nil, "f", false, nil)), "function"},
	}
	for _, tt := range tests {
		if got := typeofValue(tt.v); got != tt.want {
			t.Errorf("typeof(%s) = %q, want %q", tt.v.Kind, got, tt.want)
		}
	}
}

func TestTriStateBoolDefaultsToTrueWhenUnset(t *testing.T) {
	if !TriUnset.Bool() {
		t.Errorf("TriUnset.Bool() should default to true")
	}
	if TriFalse.Bool() {
		t.Errorf("TriFalse.Bool() should be false")
	}
	if !TriTrue.Bool() {
		t.Errorf("TriTrue.Bool() should be true")
	}
}
