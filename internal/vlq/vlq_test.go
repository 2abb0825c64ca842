package vlq

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strconv"
	"testing"
)

//region Testing Helpers

// readTestCase represents a single reading test case for type T.
type readTestCase[T Unsigned] struct {
	data       []byte // input
	extraBytes int    // number of extra bytes after VLQ
	want       T      // expected output
	wantErr    error  // expected error
}

// testRead asserts that decoding a VLQ from tc.data produces the expected results.
func testRead[T Unsigned](t *testing.T, tc readTestCase[T]) {
	t.Helper()

	r := bytes.NewReader(tc.data)
	got, err := Read[T](r)
	if !errors.Is(err, tc.wantErr) {
		t.Fatalf("Read(%# x) error = %v, wantErr %v", tc.data, err, tc.wantErr)
	}
	if err != nil {
		return
	}
	if got != tc.want {
		t.Errorf("Read(%# x) got = %v, want %v", tc.data, got, tc.want)
	}
	if r.Len() != tc.extraBytes {
		t.Errorf("Read(%# x) extra bytes = %d, want %d", tc.data, r.Len(), tc.extraBytes)
	}
}

// appendTestCase represents a single encoding test case for type T.
type appendTestCase[T Unsigned] struct {
	value T
	want  []byte
}

// testAppend asserts that appending tc.value produces the bytes in tc.want.
func testAppend[T Unsigned](t *testing.T, tc appendTestCase[T]) {
	t.Helper()

	if l := Size(tc.value); l != len(tc.want) {
		t.Errorf("Size(%d) = %d, want %d", tc.value, l, len(tc.want))
	}
	prefix := []byte{0xAA}
	got := Append(prefix, tc.value)
	if !slices.Equal(got[1:], tc.want) {
		t.Errorf("Append(%d) = %# x, want %# x", tc.value, got[1:], tc.want)
	}
	if got[0] != 0xAA {
		t.Errorf("Append(%d) modified existing bytes", tc.value)
	}
}

//endregion

//region Read Tests

func TestRead(t *testing.T) {
	tests := map[string]readTestCase[uint]{
		"SingleByte":    {[]byte{0x05}, 0, 5, nil},
		"MultiByte":     {[]byte{0x85, 0x01, 0x00}, 1, 641, nil},
		"EOF":           {nil, 0, 0, io.EOF},
		"UnexpectedEOF": {[]byte{0x81, 0x80}, 0, 0, io.ErrUnexpectedEOF},
		"NonMinimal":    {[]byte{0x80, 0x85, 0x01}, 0, 0, ErrNotMinimal},
		"Overflow":      {[]byte{0x81, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, 0, 0, ErrOverflow}, // assumes uint size of 8 bytes (64 bit architecture)
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			testRead(t, tc)
		})
	}
}

func TestRead8(t *testing.T) {
	tests := map[string]readTestCase[uint8]{
		"SingleByte": {[]byte{0x05}, 0, 5, nil},
		"Overflow":   {[]byte{0x85, 0x01, 0x00}, 0, 0, ErrOverflow},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			testRead(t, tc)
		})
	}
}

//endregion

//region Append Tests

func TestAppend(t *testing.T) {
	tests := []appendTestCase[uint]{
		{0, []byte{0x00}},
		{25, []byte{25}},
		{127, []byte{0x7f}},
		{128, []byte{0x81, 0x00}},
		{641, []byte{0x85, 0x01}},
		{113549, []byte{0x86, 0xF7, 0x0D}},
	}
	for _, tc := range tests {
		t.Run(strconv.FormatUint(uint64(tc.value), 10), func(t *testing.T) {
			testAppend(t, tc)
		})
	}
}

func TestAppend8(t *testing.T) {
	tests := []appendTestCase[uint8]{
		{0, []byte{0x00}},
		{200, []byte{0x81, 0x48}},
	}
	for _, tc := range tests {
		t.Run(strconv.FormatUint(uint64(tc.value), 10), func(t *testing.T) {
			testAppend(t, tc)
		})
	}
}

//endregion

func BenchmarkSize(b *testing.B) {
	for b.Loop() {
		Size(uint8(200))
	}
}
