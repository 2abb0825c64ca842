// Package tlv implements the tag-length-value (TLV) framing of the
// Distinguished Encoding Rules (DER) as specified in [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// This package deals with the syntactic layer of DER: identifier octets,
// length octets and the nesting of constructed values. Package
// [codello.dev/dertmpl/der] builds the semantic layer on top of it.
//
// # Headers and Values
//
// Each data value is encoded as a header (tag and length, represented by the
// [Header] type) followed by its content octets. Primitive values carry raw
// content octets; the content of a constructed value is a sequence of further
// TLVs. DER only permits the definite-length form, so every [Header] has a
// non-negative length.
//
// The [Decoder] reads a stream of TLVs. At the end of every constructed value
// it reports a zero [Header] (equivalently [EndOfContents]), although no such
// marker is present in a DER encoding. The [Decoder] never reads past the end of
// the top-level TLV it is processing, so several encodings can be read from the
// same stream one after another.
//
// Encoding is done by appending headers to a byte slice using [AppendHeader].
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package tlv

import (
	"math"
	"math/bits"
	"strconv"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/internal/vlq"
)

// TagEndOfContents is the tag that signifies the end of a constructed element.
// You can use this constant for clarity, the following are the same:
//
//	tlv.Header{}
//	tlv.Header{Tag: asn1.Universal(tlv.TagEndOfContents)}
//	tlv.EndOfContents
const TagEndOfContents = asn1.TagReserved

// EndOfContents is the marker reported by a [Decoder] at the end of a
// constructed element.
var EndOfContents = Header{}

// maxHeaderLen is the maximum number of bytes of a header the [Decoder]
// accepts: 1 identifier byte, up to 10 bytes for a high tag number, 1 byte for
// the number of length bytes and up to 8 length bytes.
const maxHeaderLen = 20

// CombinedLength returns the length of a content consisting of encodings of
// the specified lengths. If the result does not fit into the int type,
// CombinedLength returns -1.
func CombinedLength(ls ...int) int {
	sum := 0
	for _, l := range ls {
		if l < 0 || l > math.MaxInt-sum { // overflow
			return -1
		}
		sum += l
	}
	return sum
}

// Header represents a TLV header.
type Header struct {
	Tag         asn1.Tag
	Constructed bool
	Length      int
}

// String returns a string representation of h.
func (h Header) String() string {
	if h == (Header{}) {
		return "EndOfContents"
	}
	s := h.Tag.String()
	if h.Constructed {
		s += "/c"
	} else {
		s += "/p"
	}
	s += ":" + strconv.Itoa(h.Length)
	return s
}

// Size returns the number of bytes of the DER encoding of h. [AppendHeader]
// appends exactly this number of bytes.
func (h Header) Size() int {
	l := 1 // class, constructed, tag
	if h.Tag.Number >= 31 {
		l += vlq.Size(h.Tag.Number)
	}
	l++ // length
	if h.Length >= 128 {
		l += (bits.Len(uint(h.Length)) + 7) / 8
	}
	return l
}

// AppendHeader appends the DER encoding of h to dst and returns the extended
// slice. The length of h must not be negative.
func AppendHeader(dst []byte, h Header) []byte {
	if h.Length < 0 {
		panic("tlv: negative length")
	}
	b := uint8(h.Tag.Class&0b11) << 6
	if h.Constructed {
		b |= 0x20
	}
	if h.Tag.Number < 31 {
		dst = append(dst, b|uint8(h.Tag.Number))
	} else {
		dst = append(dst, b|0x1f)
		dst = vlq.Append(dst, h.Tag.Number)
	}

	if h.Length < 128 {
		return append(dst, byte(h.Length))
	}
	numBytes := (bits.Len(uint(h.Length)) + 7) / 8
	dst = append(dst, 0x80|byte(numBytes))
	for ; numBytes > 0; numBytes-- {
		dst = append(dst, byte(h.Length>>uint((numBytes-1)*8)))
	}
	return dst
}
