// Package vlq implements the base-128 [Variable-length quantity] encoding used
// by DER for high tag numbers and the arcs of object identifiers. A VLQ is a
// big-endian base-128 representation of an unsigned integer where the eighth
// bit of each byte marks continuation.
//
// DER requires minimal encodings, so [Read] rejects VLQs with leading zero
// groups (a leading 0x80 byte) and [Append] never produces them.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
package vlq

import (
	"errors"
	"io"
	"math/bits"
	"unsafe"
)

// Errors returned by [Read].
var (
	ErrNotMinimal = errors.New("vlq is not minimally encoded")
	ErrOverflow   = errors.New("vlq too large for target type")
)

// Unsigned is the set of types a VLQ can be decoded into.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Read parses a minimally encoded VLQ from r. The maximum allowed value is
// limited by the size of T.
//
// Read will only read bytes belonging to the encoded VLQ. If r returns io.EOF
// on the first read, the returned error will be io.EOF as well. An io.EOF
// within the VLQ is reported as io.ErrUnexpectedEOF.
func Read[T Unsigned](r io.ByteReader) (ret T, err error) {
	b, err := r.ReadByte()
	if err != nil {
		// io.EOF stays io.EOF
		return 0, err
	}
	if b == 0x80 {
		return 0, ErrNotMinimal
	}

	ret = T(b & 0x7f)
	numBits := bits.Len8(b & 0x7f)

	for b&0x80 != 0 {
		if b, err = r.ReadByte(); err != nil {
			break
		}
		ret <<= 7
		ret |= T(b & 0x7f)
		numBits += 7
		if numBits > int(unsafe.Sizeof(ret)*8) {
			return 0, ErrOverflow
		}
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return ret, err
}

// Size returns the number of bytes needed to encode n as a VLQ.
func Size[T Unsigned](n T) int {
	if n == 0 {
		return 1
	}
	return (bits.Len64(uint64(n)) + 6) / 7
}

// Append appends the VLQ encoding of n to dst and returns the extended slice.
func Append[T Unsigned](dst []byte, n T) []byte {
	for j := Size(n) - 1; j >= 0; j-- {
		b := byte(uint64(n)>>(uint(j)*7)) & 0x7f
		if j > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}
