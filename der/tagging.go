// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/tlv"
)

//region IMPLICIT

// Tagged returns a [Value] that encodes v using tag instead of its natural tag.
// This is IMPLICIT tagging.
func Tagged(tag asn1.Tag, v Value) Value {
	return taggedValue{tag, v}
}

type taggedValue struct {
	tag asn1.Tag
	v   Value
}

func (v taggedValue) Tag() asn1.Tag { return v.tag }

func (v taggedValue) EncodeDER(tag asn1.Tag, b *Builder) error {
	return v.v.EncodeDER(tag, b)
}

// Implicit returns a [Template] that decodes data values tagged with tag using
// t. The returned template only matches tag.
func Implicit[V any](tag asn1.Tag, t Template[V]) Template[V] {
	return implicitTemplate[V]{tag, t}
}

type implicitTemplate[V any] struct {
	tag asn1.Tag
	t   Template[V]
}

func (t implicitTemplate[V]) Tag() asn1.Tag { return t.tag }

func (t implicitTemplate[V]) Match(tag asn1.Tag) bool { return tag == t.tag }

func (t implicitTemplate[V]) Decode(d *tlv.Decoder) (V, error) {
	if _, _, err := peekTag(d, t.tag, false); err != nil {
		var zero V
		return zero, err
	}
	return t.t.DecodeTagged(t.tag, d)
}

func (t implicitTemplate[V]) DecodeTagged(tag asn1.Tag, d *tlv.Decoder) (V, error) {
	return t.t.DecodeTagged(tag, d)
}

//endregion

//region EXPLICIT

// Explicit returns a [Value] that encodes v with an explicit tag. The encoding
// is a constructed data value with the explicit tag, containing the encoding of
// v with its natural tag.
//
// When the returned value is encoded with another tag, that tag replaces the
// explicit tag. The inner encoding is unaffected.
func Explicit(tag asn1.Tag, v Value) Value {
	return explicitValue{tag, v}
}

type explicitValue struct {
	tag asn1.Tag
	v   Value
}

func (v explicitValue) Tag() asn1.Tag { return v.tag }

func (v explicitValue) EncodeDER(tag asn1.Tag, b *Builder) error {
	return b.AddConstructed(tag, func(c *Builder) error {
		return c.AddValue(v.v)
	})
}

// ExplicitTemplate returns a [Template] for values with an explicit tag. The
// outer data value must be constructed and contain exactly one data value,
// which is decoded by inner using [Template.Decode]. The explicit tag is
// discarded after it has been validated.
func ExplicitTemplate[V any](tag asn1.Tag, inner Template[V]) Template[V] {
	return explicitTemplate[V]{tag, inner}
}

type explicitTemplate[V any] struct {
	tag   asn1.Tag
	inner Template[V]
}

func (t explicitTemplate[V]) Tag() asn1.Tag { return t.tag }

func (t explicitTemplate[V]) Match(tag asn1.Tag) bool { return tag == t.tag }

func (t explicitTemplate[V]) Decode(d *tlv.Decoder) (V, error) {
	return t.decode(d, t.tag, false)
}

func (t explicitTemplate[V]) DecodeTagged(tag asn1.Tag, d *tlv.Decoder) (V, error) {
	return t.decode(d, tag, true)
}

func (t explicitTemplate[V]) decode(d *tlv.Decoder, tag asn1.Tag, tagged bool) (V, error) {
	var zero V
	offset, err := readConstructed(d, tag, tagged)
	if err != nil {
		return zero, err
	}
	h, err := d.PeekHeader()
	if err != nil {
		return zero, decodeError(tag, offset, err)
	}
	if h == tlv.EndOfContents {
		return zero, malformed(tag, offset, errExplicitNoValue)
	}
	v, err := t.inner.Decode(d)
	if err != nil {
		return zero, err
	}
	if err = readEnd(d, tag, offset, errExplicitMultiple); err != nil {
		return zero, err
	}
	return v, nil
}

//endregion
