// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"io"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/tlv"
)

// Value is a typed ASN.1 value that knows its DER encoding.
//
// Tag returns the natural tag of the value. This is the tag used when the value
// is encoded without an explicit tag override. EncodeDER appends the complete
// TLV of the value to b, using tag as the identifier. Values of a CHOICE type
// always encode using the tag of the selected alternative and ignore tag.
type Value interface {
	Tag() asn1.Tag
	EncodeDER(tag asn1.Tag, b *Builder) error
}

// Builder accumulates the DER encoding of a sequence of data values.
//
// The zero value is an empty Builder ready to use.
type Builder struct {
	buf []byte
}

// NewBuilder creates a Builder that appends to buf.
func NewBuilder(buf []byte) *Builder {
	return &Builder{buf: buf}
}

// Bytes returns the bytes written to b. The returned slice aliases the internal
// buffer of b.
func (b *Builder) Bytes() []byte { return b.buf }

// Len returns the number of bytes written to b.
func (b *Builder) Len() int { return len(b.buf) }

// AddPrimitive appends a primitive TLV with the specified tag and contents.
func (b *Builder) AddPrimitive(tag asn1.Tag, contents []byte) {
	b.buf = tlv.AppendHeader(b.buf, tlv.Header{Tag: tag, Length: len(contents)})
	b.buf = append(b.buf, contents...)
}

// AddConstructed appends a constructed TLV with the specified tag. The content
// of the TLV is produced by f. If f returns an error, nothing is appended to b.
func (b *Builder) AddConstructed(tag asn1.Tag, f func(c *Builder) error) error {
	var c Builder
	if err := f(&c); err != nil {
		return err
	}
	b.buf = tlv.AppendHeader(b.buf, tlv.Header{Tag: tag, Constructed: true, Length: len(c.buf)})
	b.buf = append(b.buf, c.buf...)
	return nil
}

// AddValue appends the encoding of v using its natural tag.
func (b *Builder) AddValue(v Value) error {
	return b.AddTagged(v.Tag(), v)
}

// AddTagged appends the encoding of v using the specified tag instead of the
// natural tag of v (implicit tagging).
func (b *Builder) AddTagged(tag asn1.Tag, v Value) error {
	if !tag.IsValid() {
		return &EncodeError{Tag: tag, Err: errInvalidClass}
	}
	n := len(b.buf)
	if err := v.EncodeDER(tag, b); err != nil {
		b.buf = b.buf[:n]
		return err
	}
	return nil
}

// Encode writes the DER encoding of v to w. It is equivalent to
//
//	EncodeTagged(w, v.Tag(), v)
func Encode(w io.Writer, v Value) error {
	return EncodeTagged(w, v.Tag(), v)
}

// EncodeTagged writes the DER encoding of v using tag to w. The encoding is
// produced in memory first and then written to w with a single Write call. If
// v cannot be encoded, nothing is written to w. An error from w is returned as
// an [*IOError].
func EncodeTagged(w io.Writer, tag asn1.Tag, v Value) error {
	buf, err := MarshalTagged(tag, v)
	if err != nil {
		return err
	}
	if _, err = w.Write(buf); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// Marshal returns the DER encoding of v.
func Marshal(v Value) ([]byte, error) {
	return MarshalTagged(v.Tag(), v)
}

// MarshalTagged returns the DER encoding of v using tag.
func MarshalTagged(tag asn1.Tag, v Value) ([]byte, error) {
	var b Builder
	if err := b.AddTagged(tag, v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
