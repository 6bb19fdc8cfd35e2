package vm

import (
	"math"
	"testing"
)

func TestToNumberPrimitives(t *testing.T) {
	tests := []struct {
		v    Value
		want float64
	}{
		{Undefined, math.NaN()},
		{Null, 0},
		{Bool(true), 1},
		{Bool(false), 0},
		{Number(3.5), 3.5},
		{String("42"), 42},
		{String("  7  "), 7},
		{String("0x1F"), 31},
		{String("not a number"), math.NaN()},
		{String(""), 0},
	}
	for _, tt := range tests {
		got, st := ToNumber(nil, tt.v)
		if st != StatusOK {
			t.Fatalf("ToNumber(%v) returned error status", tt.v)
		}
		if math.IsNaN(tt.want) {
			if !math.IsNaN(got) {
				t.Errorf("ToNumber(%v) = %v, want NaN", tt.v, got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ToNumber(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestToStringPrimitives(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "null"},
		{Bool(true), "true"},
		{Number(42), "42"},
		{Number(math.NaN()), "NaN"},
		{Number(math.Inf(1)), "Infinity"},
		{Number(math.Inf(-1)), "-Infinity"},
		{String("hi"), "hi"},
	}
	for _, tt := range tests {
		got, st := ToString(nil, tt.v)
		if st != StatusOK || got != tt.want {
			t.Errorf("ToString(%v) = %q, %v, want %q", tt.v, got, st, tt.want)
		}
	}
}

func TestToPrimitiveCallsValueOfThenToString(t *testing.T) {
	testVM := NewVM(Config{})
	obj := NewObject(nil)
	propertyInit(testVM, obj, "valueOf", FromObject(NewNativeFunction(nil, "valueOf", false,
		func(vmState *VM, this Value, args []Value, ctor bool, retval *Value) Status {
			*retval = Number(123)
			return StatusOK
		})))

	got, st := ToPrimitive(testVM, FromObject(obj), HintNumber)
	if st != StatusOK || got.Kind != KindNumber || got.AsNumber() != 123 {
		t.Fatalf("ToPrimitive = %v, %v", got, st)
	}
}

func TestToPrimitiveHintStringPrefersToString(t *testing.T) {
	testVM := NewVM(Config{})
	obj := NewObject(nil)
	propertyInit(testVM, obj, "toString", FromObject(NewNativeFunction(nil, "toString", false,
		func(vmState *VM, this Value, args []Value, ctor bool, retval *Value) Status {
			*retval = String("stringified")
			return StatusOK
		})))
	propertyInit(testVM, obj, "valueOf", FromObject(NewNativeFunction(nil, "valueOf", false,
		func(vmState *VM, this Value, args []Value, ctor bool, retval *Value) Status {
			*retval = Number(1)
			return StatusOK
		})))

	got, st := ToPrimitive(testVM, FromObject(obj), HintString)
	if st != StatusOK || got.Kind != KindString || got.AsString() != "stringified" {
		t.Fatalf("ToPrimitive(hint string) = %v, %v", got, st)
	}
}

func TestToInt32AndToUint32Wrap(t *testing.T) {
	n, st := ToInt32(nil, Number(4294967296+5))
	if st != StatusOK || n != 5 {
		t.Errorf("ToInt32 wraparound = %d, want 5", n)
	}
	u, st := ToUint32(nil, Number(-1))
	if st != StatusOK || u != 4294967295 {
		t.Errorf("ToUint32(-1) = %d, want 4294967295", u)
	}
}

func TestToIndexCanonicalForms(t *testing.T) {
	tests := []struct {
		key     string
		want    uint32
		wantOk  bool
	}{
		{"0", 0, true},
		{"1", 1, true},
		{"42", 42, true},
		{"01", InvalidIndex, false},
		{"-1", InvalidIndex, false},
		{"", InvalidIndex, false},
		{"4294967295", InvalidIndex, false}, // 2^32-1 sentinel, non-canonical
		{"abc", InvalidIndex, false},
	}
	for _, tt := range tests {
		got, ok := ToIndex(tt.key)
		if ok != tt.wantOk || (ok && got != tt.want) {
			t.Errorf("ToIndex(%q) = (%d, %v), want (%d, %v)", tt.key, got, ok, tt.want, tt.wantOk)
		}
	}
}
