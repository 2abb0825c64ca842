// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crmf

import (
	"sync"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/der"
)

// EncryptedKey is the CHOICE type defined in RFC 4211, section 6.4. It is
// implemented by [*EncryptedValue] and [EnvelopedData].
//
//	EncryptedKey ::= CHOICE {
//	    encryptedValue        EncryptedValue,
//	    envelopedData     [0] EnvelopedData }
type EncryptedKey interface {
	der.Value
	encryptedKey()
}

// EncryptedValue holds an encrypted value (usually a private key) as defined in
// RFC 4211, section 6.4. Optional fields are nil if absent.
type EncryptedValue struct {
	IntendedAlg *AlgorithmIdentifier // [0]
	SymmAlg     *AlgorithmIdentifier // [1]
	EncSymmKey  *asn1.BitString      // [2]
	KeyAlg      *AlgorithmIdentifier // [3]
	ValueHint   []byte               // [4]
	EncValue    asn1.BitString
}

func (*EncryptedValue) encryptedKey() {}

func (*EncryptedValue) Tag() asn1.Tag { return asn1.Universal(asn1.TagSequence) }

func (v *EncryptedValue) EncodeDER(tag asn1.Tag, b *der.Builder) error {
	if v == nil {
		return &der.EncodeError{Tag: tag, Err: errNoKey}
	}
	return b.AddConstructed(tag, func(c *der.Builder) error {
		for i, alg := range []*AlgorithmIdentifier{v.IntendedAlg, v.SymmAlg} {
			if alg == nil {
				continue
			}
			if err := c.AddTagged(asn1.Context(uint(i)), alg); err != nil {
				return err
			}
		}
		if v.EncSymmKey != nil {
			if err := c.AddTagged(asn1.Context(2), der.BitString(*v.EncSymmKey)); err != nil {
				return err
			}
		}
		if v.KeyAlg != nil {
			if err := c.AddTagged(asn1.Context(3), v.KeyAlg); err != nil {
				return err
			}
		}
		if v.ValueHint != nil {
			if err := c.AddTagged(asn1.Context(4), der.OctetString(v.ValueHint)); err != nil {
				return err
			}
		}
		return c.AddValue(der.BitString(v.EncValue))
	})
}

// EncryptedValueTemplate decodes an [*EncryptedValue].
var EncryptedValueTemplate = der.Sequence(func(s *der.SequenceReader) (_ *EncryptedValue, err error) {
	v := new(EncryptedValue)
	if v.IntendedAlg, err = optionalAlgorithm(s, 0); err != nil {
		return nil, err
	}
	if v.SymmAlg, err = optionalAlgorithm(s, 1); err != nil {
		return nil, err
	}
	key, ok, err := der.OptionalField(s, der.Implicit[asn1.BitString](asn1.Context(2), der.BitStringTemplate{}))
	if err != nil {
		return nil, err
	} else if ok {
		v.EncSymmKey = &key
	}
	if v.KeyAlg, err = optionalAlgorithm(s, 3); err != nil {
		return nil, err
	}
	if v.ValueHint, _, err = der.OptionalField(s, der.Implicit[[]byte](asn1.Context(4), der.OctetStringTemplate{})); err != nil {
		return nil, err
	}
	if v.EncValue, err = der.Field[asn1.BitString](s, der.BitStringTemplate{}); err != nil {
		return nil, err
	}
	return v, nil
})

// EnvelopedData holds the content octets of a CMS EnvelopedData structure (RFC
// 5652, section 6.1). The content is not interpreted, but it must consist of
// well-formed DER data values.
type EnvelopedData []byte

func (EnvelopedData) encryptedKey() {}

func (EnvelopedData) Tag() asn1.Tag { return asn1.Context(0) }

func (e EnvelopedData) EncodeDER(tag asn1.Tag, b *der.Builder) error {
	if err := der.ValidateTLVs(e); err != nil {
		return &der.EncodeError{Tag: tag, Err: err}
	}
	return der.RawValue{Class: tag.Class, Number: tag.Number, Constructed: true, Bytes: e}.EncodeDER(tag, b)
}

// envelopedDataTemplate decodes the components of a SEQUENCE into their
// encoded form.
var envelopedDataTemplate = der.Sequence(func(s *der.SequenceReader) (EnvelopedData, error) {
	var b der.Builder
	for {
		more, err := s.More()
		if err != nil {
			return nil, err
		}
		if !more {
			return EnvelopedData(b.Bytes()), nil
		}
		v, err := der.Field[der.RawValue](s, der.AnyTemplate{})
		if err != nil {
			return nil, err
		}
		if err = b.AddValue(v); err != nil {
			return nil, err
		}
	}
})

// EncryptedKeyTemplate returns the [der.Choice] for the [EncryptedKey] type.
var EncryptedKeyTemplate = sync.OnceValue(func() *der.Choice[EncryptedKey] {
	return der.NewChoice(
		der.Variant(EncryptedValueTemplate, func(v *EncryptedValue) EncryptedKey { return v }),
		der.TaggedVariant(asn1.Context(0), envelopedDataTemplate, func(e EnvelopedData) EncryptedKey { return e }),
	)
})
