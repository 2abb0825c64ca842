// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"slices"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/tlv"
)

// Alternative is a single alternative of a [Choice]. Alternatives are created
// by [Variant] and [TaggedVariant].
type Alternative[V any] struct {
	match  func(asn1.Tag) bool
	decode func(*tlv.Decoder) (V, error)
	tag    asn1.Tag // natural tag, if known
	hasTag bool
}

// Variant creates an [Alternative] that is selected if t matches the tag of the
// next data value. The complete data value is decoded using [Template.Decode]
// and then converted into the union type V using project.
//
// Use Variant for alternatives that are not tagged in the CHOICE or that use
// EXPLICIT tagging.
func Variant[V, M any](t Template[M], project func(M) V) Alternative[V] {
	alt := Alternative[V]{
		match: t.Match,
		decode: func(d *tlv.Decoder) (V, error) {
			m, err := t.Decode(d)
			if err != nil {
				var zero V
				return zero, err
			}
			return project(m), nil
		},
	}
	if tt, ok := t.(interface{ Tag() asn1.Tag }); ok {
		alt.tag, alt.hasTag = tt.Tag(), true
	}
	return alt
}

// TaggedVariant creates an [Alternative] that is selected by tag. The data value
// is decoded using t.DecodeTagged(tag, …) and then converted into the union type
// V using project.
//
// Use TaggedVariant for IMPLICIT tagged alternatives.
func TaggedVariant[V, M any](tag asn1.Tag, t Template[M], project func(M) V) Alternative[V] {
	return Alternative[V]{
		match: func(candidate asn1.Tag) bool { return candidate == tag },
		decode: func(d *tlv.Decoder) (V, error) {
			m, err := t.DecodeTagged(tag, d)
			if err != nil {
				var zero V
				return zero, err
			}
			return project(m), nil
		},
		tag:    tag,
		hasTag: true,
	}
}

// Selection is the result of decoding a [Choice]. It records which alternative
// was selected by which tag.
type Selection[V any] struct {
	Tag   asn1.Tag // tag of the decoded data value
	Index int      // index of the selected alternative
	Value V
}

// Choice is a [Template] for an ASN.1 CHOICE type. It holds an ordered table of
// alternatives. When decoding, the tag of the next data value is compared with
// the alternatives in order and the first match decodes the data value.
//
// A Choice is immutable after construction and can be used concurrently.
type Choice[V any] struct {
	alts []Alternative[V]
}

// NewChoice creates a new [Choice] with the specified alternatives. The order
// of alternatives determines the precedence if multiple alternatives match the
// same tag. Use [Choice.Overlaps] to verify that no such ambiguity exists.
func NewChoice[V any](alts ...Alternative[V]) *Choice[V] {
	return &Choice[V]{alts: slices.Clone(alts)}
}

// Len returns the number of alternatives of c.
func (c *Choice[V]) Len() int { return len(c.alts) }

// Match reports whether any alternative of c matches tag.
func (c *Choice[V]) Match(tag asn1.Tag) bool {
	return slices.ContainsFunc(c.alts, func(alt Alternative[V]) bool {
		return alt.match(tag)
	})
}

// Decode decodes the next data value using the first matching alternative. If
// no alternative matches, an [*UnrecognizedChoiceTagError] is returned.
func (c *Choice[V]) Decode(d *tlv.Decoder) (V, error) {
	s, err := c.DecodeSelection(d)
	return s.Value, err
}

// DecodeTagged is identical to [Choice.Decode]. A CHOICE has no tag of its own,
// so tag is ignored.
func (c *Choice[V]) DecodeTagged(_ asn1.Tag, d *tlv.Decoder) (V, error) {
	return c.Decode(d)
}

// DecodeSelection works like [Choice.Decode] but additionally reports the
// selected alternative. The tag of the next data value is inspected without
// consuming it, the selected alternative then decodes the complete data value.
func (c *Choice[V]) DecodeSelection(d *tlv.Decoder) (Selection[V], error) {
	offset := d.InputOffset()
	h, err := d.PeekHeader()
	if err != nil {
		return Selection[V]{}, decodeError(asn1.Tag{}, offset, err)
	}
	if h == tlv.EndOfContents {
		return Selection[V]{}, malformed(asn1.Tag{}, offset, errMissingValue)
	}
	for i, alt := range c.alts {
		if !alt.match(h.Tag) {
			continue
		}
		v, err := alt.decode(d)
		if err != nil {
			return Selection[V]{}, err
		}
		return Selection[V]{Tag: h.Tag, Index: i, Value: v}, nil
	}
	return Selection[V]{}, &UnrecognizedChoiceTagError{Tag: h.Tag, Offset: offset}
}

// Overlaps returns the tags that are matched by more than one alternative of c.
// Only the natural tags of the alternatives are considered. For a correctly
// defined CHOICE type the result is empty.
func (c *Choice[V]) Overlaps() []asn1.Tag {
	var overlaps []asn1.Tag
	for _, alt := range c.alts {
		if !alt.hasTag || slices.Contains(overlaps, alt.tag) {
			continue
		}
		n := 0
		for _, other := range c.alts {
			if other.match(alt.tag) {
				n++
			}
		}
		if n > 1 {
			overlaps = append(overlaps, alt.tag)
		}
	}
	return overlaps
}
