// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/tlv"
)

// SequenceReader gives access to the components of a constructed data value
// being decoded by [DecodeSequence].
type SequenceReader struct {
	d      *tlv.Decoder
	tag    asn1.Tag
	offset int64
}

// Tag returns the tag of the constructed data value being read.
func (s *SequenceReader) Tag() asn1.Tag { return s.tag }

// More reports whether there are unread components in s.
func (s *SequenceReader) More() (bool, error) {
	h, err := s.d.PeekHeader()
	if err != nil {
		return false, decodeError(s.tag, s.offset, err)
	}
	return h != tlv.EndOfContents, nil
}

// DecodeSequence reads a constructed data value with the specified tag from d
// and calls f to read its components. After f returns, all components must have
// been read. If the next data value does not carry tag, a
// [*MalformedEncodingError] is returned.
func DecodeSequence(d *tlv.Decoder, tag asn1.Tag, f func(s *SequenceReader) error) error {
	return decodeSequence(d, tag, false, f)
}

func decodeSequence(d *tlv.Decoder, tag asn1.Tag, tagged bool, f func(s *SequenceReader) error) error {
	offset, err := readConstructed(d, tag, tagged)
	if err != nil {
		return err
	}
	if err = f(&SequenceReader{d, tag, offset}); err != nil {
		return err
	}
	return readEnd(d, tag, offset, errUnreadComponents)
}

// Field decodes the next component of s using t. If the sequence has no more
// components, a [*MalformedEncodingError] is returned.
func Field[V any](s *SequenceReader, t Template[V]) (V, error) {
	return t.Decode(s.d)
}

// OptionalField decodes the next component of s using t if t matches its tag.
// If the sequence has no more components or the next component does not match,
// OptionalField returns false and does not consume any input.
func OptionalField[V any](s *SequenceReader, t Template[V]) (v V, ok bool, err error) {
	h, err := s.d.PeekHeader()
	if err != nil {
		return v, false, decodeError(s.tag, s.offset, err)
	}
	if h == tlv.EndOfContents || !t.Match(h.Tag) {
		return v, false, nil
	}
	v, err = t.Decode(s.d)
	return v, err == nil, err
}

// Sequence returns a [Template] for a SEQUENCE type. The components of the
// sequence are decoded by f.
func Sequence[V any](f func(s *SequenceReader) (V, error)) Template[V] {
	return sequenceTemplate[V]{asn1.Universal(asn1.TagSequence), f}
}

type sequenceTemplate[V any] struct {
	tag asn1.Tag
	f   func(s *SequenceReader) (V, error)
}

func (t sequenceTemplate[V]) Tag() asn1.Tag { return t.tag }

func (t sequenceTemplate[V]) Match(tag asn1.Tag) bool { return tag == t.tag }

func (t sequenceTemplate[V]) Decode(d *tlv.Decoder) (V, error) {
	return t.decode(d, t.tag, false)
}

func (t sequenceTemplate[V]) DecodeTagged(tag asn1.Tag, d *tlv.Decoder) (V, error) {
	return t.decode(d, tag, true)
}

func (t sequenceTemplate[V]) decode(d *tlv.Decoder, tag asn1.Tag, tagged bool) (V, error) {
	var v V
	err := decodeSequence(d, tag, tagged, func(s *SequenceReader) (err error) {
		v, err = t.f(s)
		return err
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}
