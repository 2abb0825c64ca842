// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crmf implements the PKIArchiveOptions control of the Certificate
// Request Message Format (CRMF) as defined in [RFC 4211], section 6.4, on top
// of the [der] package.
//
//	PKIArchiveOptions ::= CHOICE {
//	    encryptedPrivKey     [0] EncryptedKey,
//	    keyGenParameters     [1] KeyGenParameters,
//	    archiveRemGenPrivKey [2] BOOLEAN }
//
// The CHOICE is modelled as the sealed interface [ArchiveOptions]. Each case is
// a separate type, so a value always carries exactly one alternative and its
// tag is determined by its type.
//
// [RFC 4211]: https://www.rfc-editor.org/rfc/rfc4211
package crmf

import (
	"errors"
	"io"
	"sync"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/der"
)

var (
	errNoKey     = errors.New("missing encrypted key")
	errNoOptions = errors.New("crmf: missing archive options")
)

// ArchiveOptions is a value of the PKIArchiveOptions type. It is implemented by
// [EncryptedPrivKey], [KeyGenParameters] and [ArchiveRemGenPrivKey]. Use a type
// switch to access the payload.
//
// A CHOICE has no tag of its own. Implementations always encode themselves
// with the tag of their alternative, regardless of the tag passed to
// EncodeDER.
type ArchiveOptions interface {
	der.Value
	archiveOptions()
}

// EncryptedPrivKey is the alternative of [ArchiveOptions] that carries the
// actual encrypted private key. It is encoded with an EXPLICIT [0] tag.
type EncryptedPrivKey struct {
	Key EncryptedKey
}

// KeyGenParameters is the alternative of [ArchiveOptions] that carries
// parameters that allow the private key to be re-generated. It is encoded as
// an OCTET STRING with an IMPLICIT [1] tag.
type KeyGenParameters []byte

// ArchiveRemGenPrivKey is the alternative of [ArchiveOptions] that indicates
// whether the sender wishes the receiver to archive a private key it generates
// on behalf of the sender. It is encoded as a BOOLEAN with an IMPLICIT [2] tag.
type ArchiveRemGenPrivKey bool

func (EncryptedPrivKey) archiveOptions()     {}
func (KeyGenParameters) archiveOptions()     {}
func (ArchiveRemGenPrivKey) archiveOptions() {}

func (EncryptedPrivKey) Tag() asn1.Tag     { return asn1.Context(0) }
func (KeyGenParameters) Tag() asn1.Tag     { return asn1.Context(1) }
func (ArchiveRemGenPrivKey) Tag() asn1.Tag { return asn1.Context(2) }

func (o EncryptedPrivKey) EncodeDER(_ asn1.Tag, b *der.Builder) error {
	if o.Key == nil {
		return &der.EncodeError{Tag: o.Tag(), Err: errNoKey}
	}
	return b.AddValue(der.Explicit(o.Tag(), o.Key))
}

func (o KeyGenParameters) EncodeDER(_ asn1.Tag, b *der.Builder) error {
	return b.AddTagged(o.Tag(), der.OctetString(o))
}

func (o ArchiveRemGenPrivKey) EncodeDER(_ asn1.Tag, b *der.Builder) error {
	return b.AddTagged(o.Tag(), der.Boolean(o))
}

// ArchiveOptionsTemplate returns the [der.Choice] for the [ArchiveOptions]
// type. The template is created on first use and shared afterward.
var ArchiveOptionsTemplate = sync.OnceValue(func() *der.Choice[ArchiveOptions] {
	return der.NewChoice(
		der.Variant(der.ExplicitTemplate[EncryptedKey](asn1.Context(0), EncryptedKeyTemplate()),
			func(k EncryptedKey) ArchiveOptions { return EncryptedPrivKey{k} }),
		der.TaggedVariant(asn1.Context(1), der.OctetStringTemplate{},
			func(b []byte) ArchiveOptions { return KeyGenParameters(b) }),
		der.TaggedVariant(asn1.Context(2), der.BooleanTemplate{},
			func(v bool) ArchiveOptions { return ArchiveRemGenPrivKey(v) }),
	)
})

// ParseArchiveOptions decodes a single DER encoded PKIArchiveOptions value.
// The complete input must be consumed.
func ParseArchiveOptions(b []byte) (ArchiveOptions, error) {
	return der.Unmarshal[ArchiveOptions](ArchiveOptionsTemplate(), b)
}

// DecodeArchiveOptions reads a single DER encoded PKIArchiveOptions value from
// r. Data after the value is not read.
func DecodeArchiveOptions(r io.Reader) (ArchiveOptions, error) {
	return der.Decode[ArchiveOptions](ArchiveOptionsTemplate(), r)
}

// MarshalArchiveOptions returns the DER encoding of o.
func MarshalArchiveOptions(o ArchiveOptions) ([]byte, error) {
	if o == nil {
		return nil, errNoOptions
	}
	return der.Marshal(o)
}
