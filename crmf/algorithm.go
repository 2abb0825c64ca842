// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crmf

import (
	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/der"
)

// AlgorithmIdentifier identifies an algorithm and its optional parameters as
// defined in RFC 5280, section 4.1.1.2.
//
//	AlgorithmIdentifier ::= SEQUENCE {
//	    algorithm   OBJECT IDENTIFIER,
//	    parameters  ANY DEFINED BY algorithm OPTIONAL }
type AlgorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters *der.RawValue // nil if absent
}

func (AlgorithmIdentifier) Tag() asn1.Tag { return asn1.Universal(asn1.TagSequence) }

func (a AlgorithmIdentifier) EncodeDER(tag asn1.Tag, b *der.Builder) error {
	return b.AddConstructed(tag, func(c *der.Builder) error {
		if err := c.AddValue(der.ObjectIdentifier(a.Algorithm)); err != nil {
			return err
		}
		if a.Parameters != nil {
			return c.AddValue(*a.Parameters)
		}
		return nil
	})
}

// AlgorithmIdentifierTemplate decodes an [AlgorithmIdentifier].
var AlgorithmIdentifierTemplate = der.Sequence(func(s *der.SequenceReader) (a AlgorithmIdentifier, err error) {
	if a.Algorithm, err = der.Field[asn1.ObjectIdentifier](s, der.ObjectIdentifierTemplate{}); err != nil {
		return a, err
	}
	more, err := s.More()
	if err != nil || !more {
		return a, err
	}
	params, err := der.Field[der.RawValue](s, der.AnyTemplate{})
	if err != nil {
		return a, err
	}
	a.Parameters = &params
	return a, nil
})

// optionalAlgorithm decodes an optional IMPLICIT tagged AlgorithmIdentifier.
func optionalAlgorithm(s *der.SequenceReader, n uint) (*AlgorithmIdentifier, error) {
	a, ok, err := der.OptionalField(s, der.Implicit[AlgorithmIdentifier](asn1.Context(n), AlgorithmIdentifierTemplate))
	if err != nil || !ok {
		return nil, err
	}
	return &a, nil
}
