package utils

import (
	"bytes"
	"testing"
)

// TestParseDecimal covers accepted digit runs and every rejection class.
func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
		ok   bool
	}{
		{"0", 0, true},
		{"7", 7, true},
		{"070", 70, true},
		{"1048576", 1048576, true},
		{"9223372036854775807", 1<<63 - 1, true}, // 2^63-1, largest accepted
		{"9223372036854775808", 0, false},        // 2^63, first rejected
		{"18446744073709551615", 0, false},       // uint64 max
		{"", 0, false},
		{"-1", 0, false},
		{"1 2", 0, false},
		{"12a", 0, false},
		{" 12", 0, false},
	}
	for _, tc := range cases {
		v, ok := ParseDecimal([]byte(tc.in))
		if ok != tc.ok || (ok && v != tc.want) {
			t.Errorf("ParseDecimal(%q) = (%d, %v), want (%d, %v)", tc.in, v, ok, tc.want, tc.ok)
		}
	}
}

// TestAppendUint checks rendering including the zero case and appends onto
// existing content.
func TestAppendUint(t *testing.T) {
	if got := AppendUint(nil, 0); !bytes.Equal(got, []byte("0")) {
		t.Fatalf("AppendUint(0) = %q", got)
	}
	if got := AppendUint([]byte("n="), 1234567890); !bytes.Equal(got, []byte("n=1234567890")) {
		t.Fatalf("AppendUint = %q", got)
	}
}

// TestAppendChecksum checks the fixed three-digit zero-padded rendering.
func TestAppendChecksum(t *testing.T) {
	cases := []struct {
		sum  uint32
		want string
	}{
		{0, "000"},
		{7, "007"},
		{88, "088"},
		{255, "255"},
	}
	for _, tc := range cases {
		if got := AppendChecksum(nil, tc.sum); string(got) != tc.want {
			t.Errorf("AppendChecksum(%d) = %q, want %q", tc.sum, got, tc.want)
		}
	}
}

// TestItoa exercises the signed convenience wrapper.
func TestItoa(t *testing.T) {
	if got := Itoa(0); got != "0" {
		t.Fatalf("Itoa(0) = %q", got)
	}
	if got := Itoa(8080); got != "8080" {
		t.Fatalf("Itoa(8080) = %q", got)
	}
	if got := Itoa(-42); got != "-42" {
		t.Fatalf("Itoa(-42) = %q", got)
	}
}

// TestB2s checks the aliasing cast against plain conversion.
func TestB2s(t *testing.T) {
	if got := B2s(nil); got != "" {
		t.Fatalf("B2s(nil) = %q", got)
	}
	b := []byte("8=FIX.4.2")
	if got := B2s(b); got != string(b) {
		t.Fatalf("B2s = %q", got)
	}
}
