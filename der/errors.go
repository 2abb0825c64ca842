// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"io"
	"strconv"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/tlv"
)

var (
	errMissingValue     = errors.New("missing data value")
	errInvalidClass     = errors.New("invalid tag class")
	errUnexpectedTag    = errors.New("unexpected tag")
	errNotPrimitive     = errors.New("constructed encoding of primitive type")
	errNotConstructed   = errors.New("primitive encoding of constructed type")
	errTrailingData     = errors.New("trailing data")
	errUnreadComponents = errors.New("unexpected trailing component")
	errExplicitNoValue  = errors.New("explicit tag without value")
	errExplicitMultiple = errors.New("explicit tag with multiple values")
	errInvalidBoolean   = errors.New("invalid boolean length")
	errInvalidNull      = errors.New("non-empty null")
	errEmptyBitString   = errors.New("empty bit string")
	errInvalidPadding   = errors.New("invalid padding")
	errEmptyOID         = errors.New("empty object identifier")
	errNonMinimalOID    = errors.New("object identifier not minimally encoded")
	errTruncatedOID     = errors.New("truncated object identifier")
	errOIDOverflow      = errors.New("object identifier arc too large")
)

// IOError is returned when reading from or writing to an underlying stream
// fails. The original error is available via Unwrap.
type IOError = tlv.IOError

// MalformedEncodingError indicates that the input is not a valid DER encoding of
// the expected type. This covers truncated input, lengths that exceed the
// available bytes, invalid length octets and content that does not conform to
// the shape of a template.
//
// If the error originates in the TLV framing, Err is a [*tlv.SyntaxError].
type MalformedEncodingError struct {
	Tag    asn1.Tag // tag of the data value being decoded, if known
	Offset int64    // input offset of the data value
	Err    error
}

func (e *MalformedEncodingError) Unwrap() error { return e.Err }
func (e *MalformedEncodingError) Error() string {
	b := []byte("der: malformed encoding")
	if e.Tag != (asn1.Tag{}) {
		b = append(b, " of "...)
		b = append(b, e.Tag.String()...)
	}
	b = strconv.AppendInt(append(b, " at offset "...), e.Offset, 10)
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}

// UnrecognizedChoiceTagError indicates that a CHOICE encountered a tag that none
// of its alternatives accepts.
type UnrecognizedChoiceTagError struct {
	Tag    asn1.Tag
	Offset int64
}

func (e *UnrecognizedChoiceTagError) Error() string {
	return "der: unrecognized choice tag " + e.Tag.String() + " at offset " + strconv.FormatInt(e.Offset, 10)
}

// TagMismatchError is returned by [Template.DecodeTagged] if the actual tag in
// the input differs from the asserted tag. This usually indicates an error in
// the composition of templates.
type TagMismatchError struct {
	Expected asn1.Tag
	Actual   asn1.Tag
	Offset   int64
}

func (e *TagMismatchError) Error() string {
	return "der: expected tag " + e.Expected.String() + " but found " + e.Actual.String() +
		" at offset " + strconv.FormatInt(e.Offset, 10)
}

// EncodeError indicates that a value cannot be encoded, because it does not
// satisfy the constraints of its ASN.1 type.
type EncodeError struct {
	Tag asn1.Tag
	Err error
}

func (e *EncodeError) Unwrap() error { return e.Err }
func (e *EncodeError) Error() string {
	return "der: cannot encode " + e.Tag.String() + ": " + e.Err.Error()
}

// malformed returns a *MalformedEncodingError.
func malformed(tag asn1.Tag, offset int64, err error) error {
	return &MalformedEncodingError{Tag: tag, Offset: offset, Err: err}
}

// decodeError converts an error from the TLV layer into an error of this
// package. The value being decoded has the specified tag and starts at offset.
// io.EOF and I/O errors are passed through unchanged.
func decodeError(tag asn1.Tag, offset int64, err error) error {
	var (
		sErr  *tlv.SyntaxError
		ioErr *IOError
	)
	//goland:noinspection GoDirectComparisonOfErrors
	switch {
	case err == nil, err == io.EOF:
		return err
	case errors.As(err, &ioErr):
		return err
	case errors.As(err, &sErr):
		return &MalformedEncodingError{Tag: tag, Offset: sErr.ByteOffset, Err: err}
	default:
		return &MalformedEncodingError{Tag: tag, Offset: offset, Err: err}
	}
}
