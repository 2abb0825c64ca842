// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"io"
	"math"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/internal/vlq"
	"codello.dev/dertmpl/tlv"
)

//region [UNIVERSAL 1] BOOLEAN

// Boolean is a [Value] of the ASN.1 BOOLEAN type. TRUE is encoded as 0xFF and
// FALSE as 0x00.
type Boolean bool

func (Boolean) Tag() asn1.Tag { return asn1.Universal(asn1.TagBoolean) }

func (v Boolean) EncodeDER(tag asn1.Tag, b *Builder) error {
	if v {
		b.AddPrimitive(tag, []byte{0xff})
	} else {
		b.AddPrimitive(tag, []byte{0x00})
	}
	return nil
}

// BooleanTemplate decodes the ASN.1 BOOLEAN type. The content must consist of
// exactly one byte. Any non-zero byte is decoded as true.
type BooleanTemplate struct{}

func (BooleanTemplate) Tag() asn1.Tag { return Boolean(false).Tag() }

func (t BooleanTemplate) Match(tag asn1.Tag) bool { return tag == t.Tag() }

func (t BooleanTemplate) Decode(d *tlv.Decoder) (bool, error) {
	return t.decode(d, t.Tag(), false)
}

func (t BooleanTemplate) DecodeTagged(tag asn1.Tag, d *tlv.Decoder) (bool, error) {
	return t.decode(d, tag, true)
}

func (BooleanTemplate) decode(d *tlv.Decoder, tag asn1.Tag, tagged bool) (bool, error) {
	contents, offset, err := readPrimitive(d, tag, tagged)
	if err != nil {
		return false, err
	}
	if len(contents) != 1 {
		return false, malformed(tag, offset, errInvalidBoolean)
	}
	return contents[0] != 0, nil
}

//endregion

//region [UNIVERSAL 3] BIT STRING

// BitString is a [Value] of the ASN.1 BIT STRING type. Unused bits in the last
// byte are encoded as zero.
type BitString asn1.BitString

func (BitString) Tag() asn1.Tag { return asn1.Universal(asn1.TagBitString) }

func (v BitString) EncodeDER(tag asn1.Tag, b *Builder) error {
	s := asn1.BitString(v)
	if !s.IsValid() {
		return &EncodeError{Tag: tag, Err: errors.New("invalid bit string length")}
	}
	contents := make([]byte, 1+len(s.Bytes))
	padding := (8 - s.BitLength%8) % 8
	contents[0] = byte(padding)
	copy(contents[1:], s.Bytes)
	if len(s.Bytes) > 0 {
		contents[len(contents)-1] &= 0xff << padding
	}
	b.AddPrimitive(tag, contents)
	return nil
}

// BitStringTemplate decodes the ASN.1 BIT STRING type. The first content byte
// indicates the number of unused bits in the last byte. Unused bits are set to
// zero in the decoded value.
type BitStringTemplate struct{}

func (BitStringTemplate) Tag() asn1.Tag { return BitString{}.Tag() }

func (t BitStringTemplate) Match(tag asn1.Tag) bool { return tag == t.Tag() }

func (t BitStringTemplate) Decode(d *tlv.Decoder) (asn1.BitString, error) {
	return t.decode(d, t.Tag(), false)
}

func (t BitStringTemplate) DecodeTagged(tag asn1.Tag, d *tlv.Decoder) (asn1.BitString, error) {
	return t.decode(d, tag, true)
}

func (BitStringTemplate) decode(d *tlv.Decoder, tag asn1.Tag, tagged bool) (asn1.BitString, error) {
	contents, offset, err := readPrimitive(d, tag, tagged)
	if err != nil {
		return asn1.BitString{}, err
	}
	if len(contents) == 0 {
		return asn1.BitString{}, malformed(tag, offset, errEmptyBitString)
	}
	padding := int(contents[0])
	if padding > 7 || (len(contents) == 1 && padding > 0) {
		return asn1.BitString{}, malformed(tag, offset, errInvalidPadding)
	}
	// X.690, section 11.2.1: unused bits are zero
	if contents[len(contents)-1]&(1<<padding-1) != 0 {
		return asn1.BitString{}, malformed(tag, offset, errInvalidPadding)
	}
	return asn1.BitString{
		Bytes:     contents[1:],
		BitLength: (len(contents)-1)*8 - padding,
	}, nil
}

//endregion

//region [UNIVERSAL 4] OCTET STRING

// OctetString is a [Value] of the ASN.1 OCTET STRING type. It is always encoded
// using the primitive encoding.
type OctetString []byte

func (OctetString) Tag() asn1.Tag { return asn1.Universal(asn1.TagOctetString) }

func (v OctetString) EncodeDER(tag asn1.Tag, b *Builder) error {
	b.AddPrimitive(tag, v)
	return nil
}

// OctetStringTemplate decodes the ASN.1 OCTET STRING type. DER forbids the
// constructed encoding for string types.
type OctetStringTemplate struct{}

func (OctetStringTemplate) Tag() asn1.Tag { return OctetString{}.Tag() }

func (t OctetStringTemplate) Match(tag asn1.Tag) bool { return tag == t.Tag() }

func (t OctetStringTemplate) Decode(d *tlv.Decoder) ([]byte, error) {
	return t.decode(d, t.Tag(), false)
}

func (t OctetStringTemplate) DecodeTagged(tag asn1.Tag, d *tlv.Decoder) ([]byte, error) {
	return t.decode(d, tag, true)
}

func (OctetStringTemplate) decode(d *tlv.Decoder, tag asn1.Tag, tagged bool) ([]byte, error) {
	contents, _, err := readPrimitive(d, tag, tagged)
	return contents, err
}

//endregion

//region [UNIVERSAL 5] NULL

// Null is a [Value] of the ASN.1 NULL type.
type Null struct{}

func (Null) Tag() asn1.Tag { return asn1.Universal(asn1.TagNull) }

func (Null) EncodeDER(tag asn1.Tag, b *Builder) error {
	b.AddPrimitive(tag, nil)
	return nil
}

// NullTemplate decodes the ASN.1 NULL type.
type NullTemplate struct{}

func (NullTemplate) Tag() asn1.Tag { return Null{}.Tag() }

func (t NullTemplate) Match(tag asn1.Tag) bool { return tag == t.Tag() }

func (t NullTemplate) Decode(d *tlv.Decoder) (Null, error) {
	return t.decode(d, t.Tag(), false)
}

func (t NullTemplate) DecodeTagged(tag asn1.Tag, d *tlv.Decoder) (Null, error) {
	return t.decode(d, tag, true)
}

func (NullTemplate) decode(d *tlv.Decoder, tag asn1.Tag, tagged bool) (Null, error) {
	contents, offset, err := readPrimitive(d, tag, tagged)
	if err != nil {
		return Null{}, err
	}
	if len(contents) != 0 {
		return Null{}, malformed(tag, offset, errInvalidNull)
	}
	return Null{}, nil
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// ObjectIdentifier is a [Value] of the ASN.1 OBJECT IDENTIFIER type. The first
// two arcs are packed into a single subidentifier. Subsequent arcs use a
// variable-length base128 encoding.
type ObjectIdentifier asn1.ObjectIdentifier

func (ObjectIdentifier) Tag() asn1.Tag { return asn1.Universal(asn1.TagOID) }

func (v ObjectIdentifier) EncodeDER(tag asn1.Tag, b *Builder) error {
	oid := asn1.ObjectIdentifier(v)
	if !oid.IsValid() || oid[1] > math.MaxUint-80 {
		return &EncodeError{Tag: tag, Err: errors.New("invalid object identifier " + oid.String())}
	}
	contents := vlq.Append(nil, oid[0]*40+oid[1])
	for _, arc := range oid[2:] {
		contents = vlq.Append(contents, arc)
	}
	b.AddPrimitive(tag, contents)
	return nil
}

// ObjectIdentifierTemplate decodes the ASN.1 OBJECT IDENTIFIER type. All
// subidentifiers must be minimally encoded.
type ObjectIdentifierTemplate struct{}

func (ObjectIdentifierTemplate) Tag() asn1.Tag { return ObjectIdentifier{}.Tag() }

func (t ObjectIdentifierTemplate) Match(tag asn1.Tag) bool { return tag == t.Tag() }

func (t ObjectIdentifierTemplate) Decode(d *tlv.Decoder) (asn1.ObjectIdentifier, error) {
	return t.decode(d, t.Tag(), false)
}

func (t ObjectIdentifierTemplate) DecodeTagged(tag asn1.Tag, d *tlv.Decoder) (asn1.ObjectIdentifier, error) {
	return t.decode(d, tag, true)
}

func (ObjectIdentifierTemplate) decode(d *tlv.Decoder, tag asn1.Tag, tagged bool) (asn1.ObjectIdentifier, error) {
	contents, offset, err := readPrimitive(d, tag, tagged)
	if err != nil {
		return nil, err
	}
	oid, err := parseOID(contents)
	if err != nil {
		return nil, malformed(tag, offset, err)
	}
	return oid, nil
}

// parseOID decodes the contents of an OBJECT IDENTIFIER.
func parseOID(contents []byte) (asn1.ObjectIdentifier, error) {
	if len(contents) == 0 {
		return nil, errEmptyOID
	}
	r := bytes.NewReader(contents)

	// In the worst case, we get two elements from the first byte (which is
	// encoded differently) and then every subidentifier is a single byte long.
	oid := make(asn1.ObjectIdentifier, 2, len(contents)+1)
	for i := 0; r.Len() > 0; i++ {
		v, err := vlq.Read[uint](r)
		switch {
		case err == nil:
		case errors.Is(err, vlq.ErrNotMinimal):
			return nil, errNonMinimalOID
		case errors.Is(err, vlq.ErrOverflow):
			return nil, errOIDOverflow
		default:
			return nil, errTruncatedOID
		}
		if i > 0 {
			oid = append(oid, v)
			continue
		}
		// The first subidentifier is 40*value1 + value2:
		// value1 can take the values 0, 1 and 2 only. When value1 = 0 or
		// value1 = 1, then value2 is <= 39. When value1 = 2, then there are no
		// restrictions on value2.
		if v < 80 {
			oid[0], oid[1] = v/40, v%40
		} else {
			oid[0], oid[1] = 2, v-80
		}
	}
	return oid, nil
}

//endregion

//region RawValue and ANY

// RawValue represents an arbitrary data value that is kept in its encoded form.
// For constructed values Bytes holds the encodings of the nested data values.
type RawValue struct {
	Class       asn1.Class
	Number      uint
	Constructed bool
	Bytes       []byte
}

// Tag returns the tag of v.
func (v RawValue) Tag() asn1.Tag { return asn1.Tag{Class: v.Class, Number: v.Number} }

// EncodeDER writes v verbatim using tag as identifier.
func (v RawValue) EncodeDER(tag asn1.Tag, b *Builder) error {
	b.buf = tlv.AppendHeader(b.buf, tlv.Header{Tag: tag, Constructed: v.Constructed, Length: len(v.Bytes)})
	b.buf = append(b.buf, v.Bytes...)
	return nil
}

// AnyTemplate decodes a single data value of any type into a [RawValue]. The
// contents of constructed values are validated to consist of well-formed DER
// TLVs, but they are not interpreted.
type AnyTemplate struct{}

// Match returns true for every tag.
func (AnyTemplate) Match(asn1.Tag) bool { return true }

func (t AnyTemplate) Decode(d *tlv.Decoder) (RawValue, error) {
	offset := d.InputOffset()
	h, err := d.PeekHeader()
	if err != nil {
		return RawValue{}, decodeError(asn1.Tag{}, offset, err)
	}
	if h == tlv.EndOfContents {
		return RawValue{}, malformed(asn1.Tag{}, offset, errMissingValue)
	}
	return t.decode(d, h.Tag, offset)
}

func (t AnyTemplate) DecodeTagged(tag asn1.Tag, d *tlv.Decoder) (RawValue, error) {
	_, offset, err := peekTag(d, tag, true)
	if err != nil {
		return RawValue{}, err
	}
	return t.decode(d, tag, offset)
}

func (AnyTemplate) decode(d *tlv.Decoder, tag asn1.Tag, offset int64) (RawValue, error) {
	h, err := d.ReadHeader()
	if err != nil {
		return RawValue{}, decodeError(tag, offset, err)
	}
	contents, err := d.ReadContents()
	if err != nil {
		return RawValue{}, decodeError(tag, offset, err)
	}
	if h.Constructed {
		if err = ValidateTLVs(contents); err != nil {
			return RawValue{}, malformed(tag, offset, err)
		}
	}
	return RawValue{Class: tag.Class, Number: tag.Number, Constructed: h.Constructed, Bytes: contents}, nil
}

// ValidateTLVs checks that b consists of a sequence of well-formed DER data
// values. Constructed values are validated recursively. An empty b is valid.
func ValidateTLVs(b []byte) error {
	d := tlv.NewDecoder(bytes.NewReader(b))
	for {
		h, err := d.ReadHeader()
		//goland:noinspection GoDirectComparisonOfErrors
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if h != tlv.EndOfContents && !h.Constructed {
			if err = d.Skip(); err != nil {
				return err
			}
		}
	}
}

//endregion
