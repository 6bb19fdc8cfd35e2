package vm

import "math"

// addition implements the ADDITION opcode: coerce both operands to
// primitive (hint number, unless a Date is present, in which case
// string); if either primitive is a string, both sides are coerced to
// string and concatenated; otherwise both are coerced to number and
// summed.
func addition(vmState *VM, a, b Value) (Value, Status) {
	hint := HintNumber
	if a.Kind == KindDate || b.Kind == KindDate {
		hint = HintString
	}

	pa, st := ToPrimitive(vmState, a, hint)
	if st != StatusOK {
		return Undefined, st
	}
	pb, st := ToPrimitive(vmState, b, hint)
	if st != StatusOK {
		return Undefined, st
	}

	if pa.Kind == KindString || pb.Kind == KindString {
		sa, st := ToString(vmState, pa)
		if st != StatusOK {
			return Undefined, st
		}
		sb, st := ToString(vmState, pb)
		if st != StatusOK {
			return Undefined, st
		}
		return concatStrings(pa, pb, sa, sb), StatusOK
	}

	if pa.Kind == KindNumber && pb.Kind == KindNumber {
		return Number(pa.as.number + pb.as.number), StatusOK
	}

	na, st := ToNumber(vmState, pa)
	if st != StatusOK {
		return Undefined, st
	}
	nb, st := ToNumber(vmState, pb)
	if st != StatusOK {
		return Undefined, st
	}
	return Number(na + nb), StatusOK
}

func concatStrings(origA, origB Value, sa, sb string) Value {
	// When both operands were already strings, use their raw byte
	// representation so the byte-string tagging rule is
	// honored; otherwise build fresh String values from the coerced text.
	var av, bv Value
	if origA.Kind == KindString {
		av = origA
	} else {
		av = String(sa)
	}
	if origB.Kind == KindString {
		bv = origB
	} else {
		bv = String(sb)
	}
	raw := concatRaw(av, bv)
	v := Value{Kind: KindString}
	v.as.str = raw
	return v
}

// comparisonResult applies swap/compare convention for
// LESS / GREATER / LESS_OR_EQUAL / GREATER_OR_EQUAL.
func comparisonResult(vmState *VM, op string, a, b Value) (Value, Status) {
	pa, st := ToPrimitive(vmState, a, HintNumber)
	if st != StatusOK {
		return Undefined, st
	}
	pb, st := ToPrimitive(vmState, b, HintNumber)
	if st != StatusOK {
		return Undefined, st
	}

	x, y := pa, pb
	if op == "GREATER" || op == "LESS_OR_EQUAL" {
		x, y = pb, pa
	}

	cmp, st := primitiveCompare(vmState, x, y)
	if st != StatusOK {
		return Undefined, st
	}

	switch op {
	case "LESS", "GREATER":
		return Bool(cmp > 0), StatusOK
	default: // LESS_OR_EQUAL, GREATER_OR_EQUAL
		return Bool(cmp == 0), StatusOK
	}
}

func numericBinary(vmState *VM, a, b Value, f func(x, y float64) float64) (Value, Status) {
	x, st := ToNumber(vmState, a)
	if st != StatusOK {
		return Undefined, st
	}
	y, st := ToNumber(vmState, b)
	if st != StatusOK {
		return Undefined, st
	}
	return Number(f(x, y)), StatusOK
}

func opSub(x, y float64) float64 { return x - y }
func opMul(x, y float64) float64 { return x * y }
func opDiv(x, y float64) float64 { return x / y }
func opRem(x, y float64) float64 { return math.Mod(x, y) }

// opExp implements EXP: if |base| == 1 and exponent is NaN
// or infinite, result is NaN; else pow(b,e).
func opExp(b, e float64) float64 {
	if math.Abs(b) == 1 && (math.IsNaN(e) || math.IsInf(e, 0)) {
		return math.NaN()
	}
	return math.Pow(b, e)
}

func bitwiseBinary(vmState *VM, a, b Value, f func(x, y int32) int32) (Value, Status) {
	x, st := ToInt32(vmState, a)
	if st != StatusOK {
		return Undefined, st
	}
	y, st := ToInt32(vmState, b)
	if st != StatusOK {
		return Undefined, st
	}
	return Number(float64(f(x, y))), StatusOK
}

func opBitAnd(x, y int32) int32 { return x & y }
func opBitOr(x, y int32) int32  { return x | y }
func opBitXor(x, y int32) int32 { return x ^ y }

// opShl implements SHL: shift count masked with 0x1f,
// computed in uint32 and reinterpreted as int32.
func opShl(x, y int32) int32 {
	shift := uint32(y) & 0x1f
	return int32(uint32(x) << shift)
}

func opShr(x, y int32) int32 {
	shift := uint32(y) & 0x1f
	return x >> shift
}

// ushr implements USHR: unsigned right-shift of ToUint32.
func ushr(vmState *VM, a, b Value) (Value, Status) {
	x, st := ToUint32(vmState, a)
	if st != StatusOK {
		return Undefined, st
	}
	y, st := ToUint32(vmState, b)
	if st != StatusOK {
		return Undefined, st
	}
	shift := y & 0x1f
	return Number(float64(x >> shift)), StatusOK
}

func bitwiseNot(vmState *VM, a Value) (Value, Status) {
	x, st := ToInt32(vmState, a)
	if st != StatusOK {
		return Undefined, st
	}
	return Number(float64(^x)), StatusOK
}
