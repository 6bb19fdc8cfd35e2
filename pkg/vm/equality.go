package vm

import "math"

// looseEqual implements ECMAScript's abstract equality comparison
// (ECMA-262 §11.9.3).
func looseEqual(vmState *VM, a, b Value) (bool, Status) {
	if a.IsNullish() || b.IsNullish() {
		return a.IsNullish() && b.IsNullish(), StatusOK
	}
	if a.Kind == KindNumber && b.Kind == KindNumber {
		return a.as.number == b.as.number, StatusOK
	}
	if a.Kind == b.Kind {
		switch a.Kind {
		case KindString:
			return a.AsString() == b.AsString(), StatusOK
		case KindBoolean:
			return a.as.boolean == b.as.boolean, StatusOK
		case KindUndefined, KindNull:
			return true, StatusOK
		default:
			if a.IsObjectCategory() {
				return a.AsObject() == b.AsObject(), StatusOK
			}
			return a.as.data == b.as.data || a.as.external == b.as.external, StatusOK
		}
	}

	// Different types: sort by kind so lo.kind <= hi.kind.
	lo, hi := a, b
	if kindRank(lo) > kindRank(hi) {
		lo, hi = hi, lo
	}
	if lo.IsObjectCategory() {
		return false, StatusOK // hi must be object too, but same-kind case handled above
	}
	if hi.Kind == KindString {
		n, st := ToNumber(vmState, lo)
		if st != StatusOK {
			return false, st
		}
		return numEqualToPrimitive(n, hi), StatusOK
	}
	if hi.IsObjectCategory() {
		prim, st := ToPrimitive(vmState, hi, HintNumber)
		if st != StatusOK {
			return false, st
		}
		return looseEqual(vmState, lo, prim)
	}
	// Both primitives of different kinds not covered above (e.g. bool vs
	// number): coerce both to number.
	ln, st := ToNumber(vmState, lo)
	if st != StatusOK {
		return false, st
	}
	rn, st := ToNumber(vmState, hi)
	if st != StatusOK {
		return false, st
	}
	return ln == rn, StatusOK
}

func numEqualToPrimitive(n float64, s Value) bool {
	sn := stringToNumber(s.AsString())
	return n == sn
}

// kindRank orders kinds for the mixed-type loose-equality promotion:
// primitives below object-category, and Number < String among primitives.
func kindRank(v Value) int {
	if v.IsObjectCategory() {
		return 2
	}
	if v.Kind == KindString {
		return 1
	}
	return 0
}

// strictEqual implements STRICT_EQUAL: type-and-bits
// identity; numbers use == (so NaN != NaN); strings compare by content;
// object-category by reference identity.
func strictEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		// Undefined/Null share "nullish" semantics loosely but strict
		// equality still requires identical kinds.
		return false
	}
	switch a.Kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.as.boolean == b.as.boolean
	case KindNumber:
		return a.as.number == b.as.number
	case KindString:
		return a.AsString() == b.AsString()
	case KindData:
		return a.as.data == b.as.data
	case KindExternal:
		return a.as.external == b.as.external
	default:
		return a.AsObject() == b.AsObject()
	}
}

// primitiveCompare coerces a and b per the relational-comparison rules
// and returns 1 (a<b), 0 (a>=b), -1 (incomparable, e.g. NaN involved).
func primitiveCompare(vmState *VM, a, b Value) (int, Status) {
	if a.Kind == KindString && b.Kind == KindString {
		as, bs := a.AsString(), b.AsString()
		if as < bs {
			return 1, StatusOK
		}
		return 0, StatusOK
	}

	an, st := ToNumber(vmState, a)
	if st != StatusOK {
		return 0, st
	}
	bn, st := ToNumber(vmState, b)
	if st != StatusOK {
		return 0, st
	}
	if math.IsNaN(an) || math.IsNaN(bn) {
		return -1, StatusOK
	}
	if an < bn {
		return 1, StatusOK
	}
	return 0, StatusOK
}
