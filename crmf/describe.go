// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crmf

import (
	"encoding/hex"
	"strconv"

	"codello.dev/dertmpl/asn1"
)

// Description is a display oriented summary of an [ArchiveOptions] value.
type Description struct {
	Variant string  `json:"variant" yaml:"variant"`
	Tag     string  `json:"tag" yaml:"tag"`
	Fields  []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Field is a single named property of a [Description].
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Describe returns a summary of o. Binary data is rendered in hexadecimal.
func Describe(o ArchiveOptions) Description {
	desc := Description{Tag: o.Tag().String()}
	switch o := o.(type) {
	case EncryptedPrivKey:
		desc.Variant = "encryptedPrivKey"
		desc.Fields = describeKey(o.Key)
	case KeyGenParameters:
		desc.Variant = "keyGenParameters"
		desc.Fields = []Field{{"parameters", hex.EncodeToString(o)}}
	case ArchiveRemGenPrivKey:
		desc.Variant = "archiveRemGenPrivKey"
		desc.Fields = []Field{{"archive", strconv.FormatBool(bool(o))}}
	}
	return desc
}

func describeKey(k EncryptedKey) []Field {
	switch k := k.(type) {
	case *EncryptedValue:
		fields := []Field{{"key", "encryptedValue"}}
		fields = appendAlgorithm(fields, "intendedAlg", k.IntendedAlg)
		fields = appendAlgorithm(fields, "symmAlg", k.SymmAlg)
		if k.EncSymmKey != nil {
			fields = append(fields, Field{"encSymmKey", formatBits(*k.EncSymmKey)})
		}
		fields = appendAlgorithm(fields, "keyAlg", k.KeyAlg)
		if k.ValueHint != nil {
			fields = append(fields, Field{"valueHint", hex.EncodeToString(k.ValueHint)})
		}
		return append(fields, Field{"encValue", formatBits(k.EncValue)})
	case EnvelopedData:
		return []Field{
			{"key", "envelopedData"},
			{"content", hex.EncodeToString(k)},
		}
	}
	return nil
}

func appendAlgorithm(fields []Field, name string, alg *AlgorithmIdentifier) []Field {
	if alg == nil {
		return fields
	}
	fields = append(fields, Field{name, alg.Algorithm.String()})
	if alg.Parameters != nil {
		fields = append(fields, Field{name + ".parameters", alg.Parameters.Tag().String()})
	}
	return fields
}

// formatBits formats s as hex, followed by its length in bits if the length
// is not a multiple of 8.
func formatBits(s asn1.BitString) string {
	str := hex.EncodeToString(s.Bytes)
	if s.BitLength%8 != 0 {
		str += " (" + strconv.Itoa(s.BitLength) + " bits)"
	}
	return str
}
