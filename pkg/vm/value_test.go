package vm

import "testing"

func TestKindOrderingInvariant(t *testing.T) {
	primitives := []Kind{KindUndefined, KindNull, KindBoolean, KindNumber, KindString, KindData, KindExternal}
	objects := []Kind{KindObject, KindArray, KindFunction, KindRegExp, KindDate, KindObjectValue}

	for _, p := range primitives {
		for _, o := range objects {
			if !(p < o) {
				t.Errorf("expected primitive kind %s < object kind %s", p, o)
			}
		}
	}
	if !(KindNumber < KindString) {
		t.Errorf("expected KindNumber < KindString among primitives")
	}
}

func TestIsObjectCategoryAndIsPrimitive(t *testing.T) {
	for _, k := range []Kind{KindObject, KindArray, KindFunction, KindRegExp, KindDate, KindObjectValue} {
		if !k.IsObjectCategory() {
			t.Errorf("%s: expected IsObjectCategory", k)
		}
		if k.IsPrimitive() {
			t.Errorf("%s: expected not IsPrimitive", k)
		}
	}
	for _, k := range []Kind{KindUndefined, KindNull, KindBoolean, KindNumber, KindString, KindData, KindExternal} {
		if !k.IsPrimitive() {
			t.Errorf("%s: expected IsPrimitive", k)
		}
		if k.IsObjectCategory() {
			t.Errorf("%s: expected not IsObjectCategory", k)
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Undefined, false},
		{Null, false},
		{Bool(false), false},
		{Bool(true), true},
		{Number(0), false},
		{Number(-0), false},
		{Number(1), true},
		{String(""), false},
		{String("x"), true},
		{FromObject(NewObject(nil)), true},
	}
	for _, tt := range tests {
		if got := tt.v.Truthy(); got != tt.want {
			t.Errorf("Truthy(%s) = %v, want %v", tt.v.Kind, got, tt.want)
		}
	}
}

func TestTruthyNaN(t *testing.T) {
	nan := Number(0)
	nan.as.number = nan.as.number / nan.as.number // force NaN without importing math
	if nan.Truthy() {
		t.Errorf("NaN should be falsy")
	}
}

func TestFromObjectMirrorsKind(t *testing.T) {
	arr := NewArray(nil)
	v := FromObject(arr)
	if v.Kind != KindArray {
		t.Errorf("FromObject(array) Kind = %s, want array", v.Kind)
	}
	if v.AsObject() != arr {
		t.Errorf("FromObject should wrap the same Object pointer")
	}
}

func TestByteStringTagging(t *testing.T) {
	v := ByteString([]byte{0xff, 0xfe})
	if !v.AsRawString().ByteString {
		t.Errorf("ByteString value should be tagged ByteString")
	}
}

func TestConcatRawByteStringPropagation(t *testing.T) {
	a := String("ab")
	b := ByteString([]byte{0xff})
	r := concatRaw(a, b)
	if !r.ByteString {
		t.Errorf("concatRaw with a byte-string operand should propagate the tag")
	}
}
