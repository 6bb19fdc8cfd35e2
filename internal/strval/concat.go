// Package strval implements the string concatenation and "countability"
// helpers the VM core's ADDITION opcode and string value kind rely on.
// It is split out from pkg/vm because it has no dependency on the value
// model itself — it operates on raw byte buffers plus a length hint,
// mirroring a common separation of string-layout helpers from Value.
package strval

import "golang.org/x/text/width"

// String is the on-the-wire shape of a string value's payload: a byte
// buffer plus a cached rune Length. ByteString is true when Length does
// not reflect a counted number of runes.
type String struct {
	Bytes      []byte
	Length     int
	ByteString bool
}

// NewString builds a String, counting runes unless the caller already
// knows it to be byte-oriented (e.g. originating from host/external data).
func NewString(s string) String {
	return String{Bytes: []byte(s), Length: len([]rune(s)), ByteString: false}
}

// NewByteString builds a String explicitly tagged as a byte string
// (Length is left 0 and the byte size stands for the length; no
// rune-counting attempted).
func NewByteString(b []byte) String {
	return String{Bytes: b, Length: 0, ByteString: true}
}

// Countable reports whether s is eligible to contribute a real rune
// Length to a concatenation result: either it is empty, or it is not
// already tagged as a byte string.
func (s String) Countable() bool {
	return s.ByteString == false || len(s.Bytes) == 0
}

func (s String) String() string { return string(s.Bytes) }

// Concat joins a and b: the result's byte size is the sum of both input
// sizes; its Length is the sum of both input lengths only when both
// inputs are UTF-8-countable, otherwise the result is tagged a byte
// string with Length 0. Memory is allocated fresh and both inputs
// copied in order.
func Concat(a, b String) String {
	buf := make([]byte, 0, len(a.Bytes)+len(b.Bytes))
	buf = append(buf, a.Bytes...)
	buf = append(buf, b.Bytes...)

	if a.Countable() && b.Countable() {
		return String{Bytes: buf, Length: a.Length + b.Length, ByteString: false}
	}
	return String{Bytes: buf, Length: 0, ByteString: true}
}

// IsFullWidthRune reports whether r is classified as fullwidth/wide by
// Unicode East Asian Width (golang.org/x/text/width). Used only as a
// display-width hint for backtrace/debug formatting; it never affects
// Concat's length semantics.
func IsFullWidthRune(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	default:
		return false
	}
}

// DisplayWidth estimates the terminal column width of s, treating each
// fullwidth rune as occupying two columns. Used by optional backtrace
// formatting, never by core VM semantics.
func DisplayWidth(s string) int {
	w := 0
	for _, r := range s {
		if IsFullWidthRune(r) {
			w += 2
		} else {
			w++
		}
	}
	return w
}
