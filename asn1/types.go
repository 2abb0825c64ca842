// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asn1

import (
	"errors"
	"math/bits"
	"slices"
	"strconv"
	"strings"
)

//region [UNIVERSAL 3] BIT STRING

// BitString implements the ASN.1 BIT STRING type. A bit string is padded up to
// the nearest byte in memory and the number of valid bits is recorded. Padding
// bits will be encoded and decoded as zero bits.
//
// See also section 22 of Rec. ITU-T X.680.
type BitString struct {
	Bytes     []byte // bits packed into bytes.
	BitLength int    // length in bits.
}

// IsValid reports whether s holds exactly the number of bytes needed for
// BitLength bits.
func (s BitString) IsValid() bool {
	return s.BitLength >= 0 && len(s.Bytes) == (s.BitLength+8-1)/8
}

// Len returns the number of bits in s.
func (s BitString) Len() int {
	return s.BitLength
}

// At returns the bit at the given index. If the index is out of range At panics.
func (s BitString) At(i int) int {
	if i < 0 || i >= s.BitLength {
		panic("index out of range")
	}
	x := i / 8
	y := 7 - uint(i%8)
	return int(s.Bytes[x]>>y) & 1
}

// Equal reports whether s and other contain the same bits.
func (s BitString) Equal(other BitString) bool {
	if s.BitLength != other.BitLength || len(s.Bytes) != len(other.Bytes) {
		return false
	}
	if len(s.Bytes) == 0 {
		return true
	}
	last := len(s.Bytes) - 1
	mask := ^byte(1<<s.padding() - 1)
	return slices.Equal(s.Bytes[:last], other.Bytes[:last]) && s.Bytes[last]&mask == other.Bytes[last]&mask
}

// padding returns the number of unused bits in the last byte of s.
func (s BitString) padding() uint {
	return uint((8 - s.BitLength%8) % 8)
}

// String formats s into a readable binary representation. Bits will be grouped
// into bytes. The last group may have fewer than 8 characters.
func (s BitString) String() string {
	var sb strings.Builder
	sb.Grow(s.BitLength + s.BitLength/8)
	for i := range s.BitLength {
		if i > 0 && i%8 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('0' + byte(s.At(i)))
	}
	return sb.String()
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// An ObjectIdentifier represents an ASN.1 OBJECT IDENTIFIER. The semantics of
// an object identifier are specified in [Rec. ITU-T X.660].
//
// See also section 32 of Rec. ITU-T X.680.
//
// [Rec. ITU-T X.660]: https://www.itu.int/rec/T-REC-X.660
type ObjectIdentifier []uint

// ParseObjectIdentifier parses the dot-separated notation of an object
// identifier, e.g. "2.16.840.1.101.3.4.1.42". The result is validated with
// [ObjectIdentifier.IsValid].
func ParseObjectIdentifier(s string) (ObjectIdentifier, error) {
	if s == "" {
		return nil, errors.New("asn1: empty object identifier")
	}
	parts := strings.Split(s, ".")
	oid := make(ObjectIdentifier, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, bits.UintSize)
		if err != nil {
			return nil, errors.New("asn1: invalid object identifier arc " + strconv.Quote(part))
		}
		oid[i] = uint(n)
	}
	if !oid.IsValid() {
		return nil, errors.New("asn1: invalid object identifier " + strconv.Quote(s))
	}
	return oid, nil
}

// IsValid reports whether oid can be encoded. An object identifier needs at
// least two arcs, the first arc must be 0, 1 or 2 and the second arc must be
// less than 40 unless the first arc is 2.
func (oid ObjectIdentifier) IsValid() bool {
	if len(oid) < 2 || oid[0] > 2 {
		return false
	}
	return oid[0] == 2 || oid[1] < 40
}

// Equal reports whether oid and other represent the same identifier.
func (oid ObjectIdentifier) Equal(other ObjectIdentifier) bool {
	return slices.Equal(oid, other)
}

// String returns the dot-separated notation of oid.
func (oid ObjectIdentifier) String() string {
	var s strings.Builder
	s.Grow(32)

	buf := make([]byte, 0, 20)
	for i, v := range oid {
		if i > 0 {
			s.WriteByte('.')
		}
		s.Write(strconv.AppendUint(buf, uint64(v), 10))
	}

	return s.String()
}

//endregion
