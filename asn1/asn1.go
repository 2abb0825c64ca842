// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asn1 defines the vocabulary shared by the encoding packages of this
// module: ASN.1 tags and their classes as defined in [Rec. ITU-T X.680], and
// Go types for the few ASN.1 types that have no natural Go counterpart.
//
// This package does not encode or decode anything by itself. The syntactic
// TLV layer is implemented in package [codello.dev/dertmpl/tlv], the
// template-based DER codec in package [codello.dev/dertmpl/der].
//
// # Tags
//
// Every data value in an encoding is identified by a [Tag], consisting of a
// [Class] and a tag number. Two tags are equal iff their class and number are
// equal; the == operator and [Tag.Matches] are equivalent. Whether a value uses
// the primitive or constructed encoding is not part of its tag.
//
// In ASN.1 notation a context-specific tag is written as [0], tags of other
// classes include the class name, e.g. [APPLICATION 5]. The helper functions
// [Context], [Application], [Private] and [Universal] construct tags in the
// respective class:
//
//	asn1.Context(0)                      // [0]
//	asn1.Universal(asn1.TagOctetString)  // [UNIVERSAL 4]
//
// [Rec. ITU-T X.680]: https://www.itu.int/rec/T-REC-X.680
package asn1

import (
	"strconv"
	"strings"
)

// Tag constitutes an ASN.1 tag, consisting of its class and number. For
// details, see Section 8 of Rec. ITU-T X.680.
type Tag struct {
	Class  Class
	Number uint
}

// Matches reports whether candidate denotes the same tag as t.
func (t Tag) Matches(candidate Tag) bool {
	return t == candidate
}

// IsValid reports whether t has a valid class.
func (t Tag) IsValid() bool {
	return t.Class.IsValid()
}

// String returns a string representation t in a format similar to the one used
// in ASN.1 notation. The tag number is enclosed by square brackets and prefixed
// with the class used. To avoid ambiguity the UNIVERSAL word is used for
// universal tags, although this is not valid ASN.1 syntax.
func (t Tag) String() string {
	if t.Class == ClassContextSpecific {
		return "[" + strconv.FormatUint(uint64(t.Number), 10) + "]"
	}
	return "[" + strings.ToUpper(t.Class.String()) + " " + strconv.FormatUint(uint64(t.Number), 10) + "]"
}

// Universal returns the tag with number n in the [ClassUniversal] namespace.
func Universal(n uint) Tag { return Tag{ClassUniversal, n} }

// Application returns the tag with number n in the [ClassApplication]
// namespace.
func Application(n uint) Tag { return Tag{ClassApplication, n} }

// Context returns the tag with number n in the [ClassContextSpecific]
// namespace. Context-specific tags are the tags written as [n] in ASN.1
// notation.
func Context(n uint) Tag { return Tag{ClassContextSpecific, n} }

// Private returns the tag with number n in the [ClassPrivate] namespace.
func Private(n uint) Tag { return Tag{ClassPrivate, n} }

// Class holds the class part of an ASN.1 tag. The class acts as a namespace for
// the tag number. A Class value is an unsigned 2-bit integer. Class values
// whose value exceeds 2 bits are invalid.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= 3
}

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the [Class] type.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// TagReserved is a reserved tag number in the [ClassUniversal] namespace to be
// used by encoding rules. This assignment is defined in Rec. ITU-T X.680,
// Section 8, Table 1.
const TagReserved uint = 0

// These are some ASN.1 tag numbers defined in the [ClassUniversal] namespace.
// These assignments are defined in Rec. ITU-T X.680, Section 8, Table 1.
const (
	TagBoolean         uint = 1
	TagInteger         uint = 2
	TagBitString       uint = 3
	TagOctetString     uint = 4
	TagNull            uint = 5
	TagOID             uint = 6
	TagEnumerated      uint = 10
	TagUTF8String      uint = 12
	TagSequence        uint = 16
	TagSet             uint = 17
	TagPrintableString uint = 19
	TagIA5String       uint = 22
	TagUTCTime         uint = 23
	TagGeneralizedTime uint = 24
)
