// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package der implements a template-based codec for the Distinguished Encoding
// Rules (DER) of ASN.1 as defined in [Rec. ITU-T X.690].
//
// Encoding and decoding are split into two abstractions. A [Value] is a typed
// ASN.1 value that knows its natural tag and how to encode itself. A
// [Template] describes how to decode one TLV from a [tlv.Decoder] into a Go
// value. Templates are stateless, so a single template can be shared between
// goroutines.
//
// # Tagging
//
// Every [Template] can decode a value in two ways. [Template.Decode] expects
// the natural tag of the type (the tag that [Template.Match] accepts).
// [Template.DecodeTagged] asserts a specific tag instead, which implements
// IMPLICIT tagging: the identifier of the data value is replaced but its
// encoding is otherwise unchanged. On the encoding side [Builder.AddTagged]
// and [Tagged] do the same.
//
// EXPLICIT tagging wraps the complete encoding of a value into an additional
// constructed TLV. Use [Explicit] and [ExplicitTemplate] for that.
//
// A CHOICE is modelled by [Choice]. It selects one of its alternatives by
// inspecting the tag of the next data value. Since a CHOICE has no tag of its
// own, it ignores any tag passed to [Choice.DecodeTagged].
//
// # Errors
//
// Decoding errors are reported as [*MalformedEncodingError],
// [*UnrecognizedChoiceTagError] or [*TagMismatchError]. Errors of the
// underlying reader or writer are reported as [*IOError]. No partial values are
// returned with an error.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
package der

import (
	"bytes"
	"io"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/tlv"
)

// Template decodes DER encoded data values into values of type V.
//
// Match reports whether the template accepts a data value with the specified
// tag as its first header. Decode reads one complete TLV from d. It returns a
// [*MalformedEncodingError] if the tag of the data value is not accepted by
// Match or if the encoding does not have the shape the template expects. If d
// is positioned at the end of its input, Decode returns io.EOF.
//
// DecodeTagged works like Decode but expects the data value to be tagged with
// tag instead. If the input has a different tag, a [*TagMismatchError] is
// returned.
type Template[V any] interface {
	Match(tag asn1.Tag) bool
	Decode(d *tlv.Decoder) (V, error)
	DecodeTagged(tag asn1.Tag, d *tlv.Decoder) (V, error)
}

// Unmarshal decodes a single data value from b using t. The complete input must
// be consumed. Trailing data or empty input is reported as a
// [*MalformedEncodingError].
func Unmarshal[V any](t Template[V], b []byte) (V, error) {
	d := tlv.NewDecoder(bytes.NewReader(b))
	v, err := decodeOne(t, d)
	if err != nil {
		return v, err
	}
	//goland:noinspection GoDirectComparisonOfErrors
	if _, err = d.PeekHeader(); err != io.EOF {
		var zero V
		return zero, malformed(asn1.Tag{}, d.InputOffset(), errTrailingData)
	}
	return v, nil
}

// Decode decodes a single data value from r using t. Decode does not read past
// the end of the data value, so the remaining data of r can be used for
// subsequent calls. Empty input is reported as a [*MalformedEncodingError].
//
// To decode a stream of data values, create a [tlv.Decoder] and call
// [Template.Decode] until it returns io.EOF.
func Decode[V any](t Template[V], r io.Reader) (V, error) {
	return decodeOne(t, tlv.NewDecoder(r))
}

// decodeOne decodes a single mandatory data value from d.
func decodeOne[V any](t Template[V], d *tlv.Decoder) (V, error) {
	v, err := t.Decode(d)
	//goland:noinspection GoDirectComparisonOfErrors
	if err == io.EOF {
		return v, malformed(asn1.Tag{}, d.InputOffset(), io.ErrUnexpectedEOF)
	}
	return v, err
}

// peekTag peeks the next header of d and verifies that it carries tag. If the
// header has another tag, a [*MalformedEncodingError] is returned, unless
// tagged is true in which case a [*TagMismatchError] is returned. The returned
// offset is the input offset of the data value.
func peekTag(d *tlv.Decoder, tag asn1.Tag, tagged bool) (tlv.Header, int64, error) {
	offset := d.InputOffset()
	h, err := d.PeekHeader()
	if err != nil {
		return h, offset, decodeError(tag, offset, err)
	}
	if h == tlv.EndOfContents {
		return h, offset, malformed(tag, offset, errMissingValue)
	}
	if h.Tag != tag {
		if tagged {
			return h, offset, &TagMismatchError{Expected: tag, Actual: h.Tag, Offset: offset}
		}
		return h, offset, malformed(tag, offset, errUnexpectedTag)
	}
	return h, offset, nil
}

// readPrimitive reads the contents of a primitive data value with the specified
// tag from d. See peekTag for the meaning of tagged.
func readPrimitive(d *tlv.Decoder, tag asn1.Tag, tagged bool) ([]byte, int64, error) {
	h, offset, err := peekTag(d, tag, tagged)
	if err != nil {
		return nil, offset, err
	}
	if h.Constructed {
		return nil, offset, malformed(tag, offset, errNotPrimitive)
	}
	if _, err = d.ReadHeader(); err != nil {
		return nil, offset, decodeError(tag, offset, err)
	}
	contents, err := d.ReadContents()
	if err != nil {
		return nil, offset, decodeError(tag, offset, err)
	}
	return contents, offset, nil
}

// readConstructed reads the header of a constructed data value with the
// specified tag from d. The caller must consume the contents of the data value
// including the final [tlv.EndOfContents]. See peekTag for the meaning of
// tagged.
func readConstructed(d *tlv.Decoder, tag asn1.Tag, tagged bool) (int64, error) {
	h, offset, err := peekTag(d, tag, tagged)
	if err != nil {
		return offset, err
	}
	if !h.Constructed {
		return offset, malformed(tag, offset, errNotConstructed)
	}
	if _, err = d.ReadHeader(); err != nil {
		return offset, decodeError(tag, offset, err)
	}
	return offset, nil
}

// readEnd reads the end of the constructed data value with the specified tag
// that started at offset. If there are unread components left, a
// [*MalformedEncodingError] with errTrailing is returned.
func readEnd(d *tlv.Decoder, tag asn1.Tag, offset int64, errTrailing error) error {
	h, err := d.PeekHeader()
	if err != nil {
		return decodeError(tag, offset, err)
	}
	if h != tlv.EndOfContents {
		return malformed(tag, d.InputOffset(), errTrailing)
	}
	_, err = d.ReadHeader()
	return decodeError(tag, offset, err)
}
