package utils

import (
	"os"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
// Used for human-readable print paths.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

///////////////////////////////////////////////////////////////////////////////
// Decimal Scanners — No Allocation, Strict Digit Validation
///////////////////////////////////////////////////////////////////////////////

// ParseDecimal parses an unsigned base-10 integer from b. The whole input
// must be digits; a rejected byte or an empty input reports !ok. Values
// at or above 2^63 are rejected rather than wrapped.
//
//go:nosplit
//go:inline
func ParseDecimal(b []byte) (v uint64, ok bool) {
	if len(b) == 0 {
		return 0, false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		// The pre-multiplication bound keeps v*10+9 below 2^64, so the
		// post-add check sees the exact value, not a wrapped one.
		if v > (1<<63)/10 {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
		if v >= 1<<63 {
			return 0, false
		}
	}
	return v, true
}

///////////////////////////////////////////////////////////////////////////////
// Decimal Renderers — For Reply Construction & Diagnostics
///////////////////////////////////////////////////////////////////////////////

// AppendUint appends the base-10 text of v to dst and returns the extended
// slice. Renders into a stack scratch first so dst grows by one append.
//
//go:nosplit
//go:inline
func AppendUint(dst []byte, v uint64) []byte {
	var scratch [20]byte
	i := len(scratch)
	for {
		i--
		scratch[i] = byte('0' + v%10)
		v /= 10
		if v == 0 {
			break
		}
	}
	return append(dst, scratch[i:]...)
}

// AppendChecksum appends sum as exactly three zero-padded decimal digits,
// the rendering the checksum field requires. sum must already be reduced
// modulo 256.
//
//go:nosplit
//go:inline
func AppendChecksum(dst []byte, sum uint32) []byte {
	return append(dst, byte('0'+sum/100), byte('0'+sum/10%10), byte('0'+sum%10))
}

// Itoa renders an int in base 10. Convenience wrapper for log paths; not
// for hot loops.
func Itoa(v int) string {
	if v < 0 {
		return "-" + string(AppendUint(nil, uint64(-v)))
	}
	return string(AppendUint(nil, uint64(v)))
}

///////////////////////////////////////////////////////////////////////////////
// Diagnostics Sink
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg straight to stderr. Single write, no formatting,
// no locking beyond the fd itself. Cold paths only.
//
//go:nosplit
//go:inline
func PrintWarning(msg string) {
	os.Stderr.WriteString(msg)
}
