// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crmf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codello.dev/dertmpl/asn1"
)

func TestDescribe(t *testing.T) {
	tests := map[string]struct {
		value ArchiveOptions
		want  Description
	}{
		"ArchiveRemGenPrivKey": {ArchiveRemGenPrivKey(true), Description{
			Variant: "archiveRemGenPrivKey",
			Tag:     "[2]",
			Fields:  []Field{{"archive", "true"}},
		}},
		"KeyGenParameters": {KeyGenParameters{0x01, 0xAB}, Description{
			Variant: "keyGenParameters",
			Tag:     "[1]",
			Fields:  []Field{{"parameters", "01ab"}},
		}},
		"EnvelopedData": {EncryptedPrivKey{EnvelopedData{0x05, 0x00}}, Description{
			Variant: "encryptedPrivKey",
			Tag:     "[0]",
			Fields:  []Field{{"key", "envelopedData"}, {"content", "0500"}},
		}},
		"EncryptedValue": {EncryptedPrivKey{fullEncryptedValue()}, Description{
			Variant: "encryptedPrivKey",
			Tag:     "[0]",
			Fields: []Field{
				{"key", "encryptedValue"},
				{"intendedAlg", "1.2.3"},
				{"symmAlg", "1.2.4"},
				{"symmAlg.parameters", asn1.Universal(asn1.TagNull).String()},
				{"encSymmKey", "f0 (4 bits)"},
				{"keyAlg", "1.2.5"},
				{"valueHint", "01"},
				{"encValue", "ab"},
			},
		}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Describe(tc.value))
		})
	}
}
