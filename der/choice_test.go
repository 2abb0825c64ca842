// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/tlv"
)

func identity[T any](v T) any { return v }

func testChoice() *Choice[any] {
	return NewChoice(
		Variant(BooleanTemplate{}, identity[bool]),
		TaggedVariant(asn1.Context(1), OctetStringTemplate{}, identity[[]byte]),
		Variant(ExplicitTemplate[Null](asn1.Context(0), NullTemplate{}), identity[Null]),
	)
}

func TestChoice_Decode(t *testing.T) {
	c := testChoice()
	tests := map[string]struct {
		data      []byte
		wantIndex int
		wantTag   asn1.Tag
		want      any
	}{
		"Natural":  {[]byte{0x01, 0x01, 0xFF}, 0, asn1.Universal(asn1.TagBoolean), true},
		"Implicit": {[]byte{0x81, 0x02, 0xAA, 0xBB}, 1, asn1.Context(1), []byte{0xAA, 0xBB}},
		"Explicit": {[]byte{0xA0, 0x02, 0x05, 0x00}, 2, asn1.Context(0), Null{}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d := tlv.NewDecoder(bytes.NewReader(tc.data))
			s, err := c.DecodeSelection(d)
			require.NoError(t, err)
			assert.Equal(t, tc.wantIndex, s.Index)
			assert.Equal(t, tc.wantTag, s.Tag)
			assert.Equal(t, tc.want, s.Value)

			got, err := Unmarshal[any](c, tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestChoice_DecodeErrors(t *testing.T) {
	c := testChoice()
	t.Run("Unrecognized", func(t *testing.T) {
		_, err := Unmarshal[any](c, []byte{0x85, 0x00})
		var ucErr *UnrecognizedChoiceTagError
		require.ErrorAs(t, err, &ucErr)
		assert.Equal(t, asn1.Context(5), ucErr.Tag)
		assert.Equal(t, int64(0), ucErr.Offset)
	})
	t.Run("UnrecognizedOffset", func(t *testing.T) {
		d := tlv.NewDecoder(bytes.NewReader([]byte{0x01, 0x01, 0x00, 0x9F, 0x20, 0x00}))
		_, err := c.Decode(d)
		require.NoError(t, err)
		_, err = c.Decode(d)
		var ucErr *UnrecognizedChoiceTagError
		require.ErrorAs(t, err, &ucErr)
		assert.Equal(t, asn1.Context(32), ucErr.Tag)
		assert.Equal(t, int64(3), ucErr.Offset)
	})
	t.Run("Empty", func(t *testing.T) {
		_, err := Unmarshal[any](c, nil)
		assert.ErrorIs(t, requireMalformed(t, err), io.ErrUnexpectedEOF)
	})
	t.Run("EndOfStream", func(t *testing.T) {
		_, err := c.Decode(tlv.NewDecoder(bytes.NewReader(nil)))
		assert.Equal(t, io.EOF, err)
	})
	t.Run("SelectedInvalid", func(t *testing.T) {
		// the alternative is selected by tag, its error is returned unchanged
		_, err := Unmarshal[any](c, []byte{0xA1, 0x00})
		assert.ErrorIs(t, requireMalformed(t, err), errNotPrimitive)
	})
	t.Run("Truncated", func(t *testing.T) {
		data := []byte{0x81, 0x03, 0x01, 0x02, 0x03}
		for i := 1; i < len(data); i++ {
			_, err := Unmarshal[any](c, data[:i])
			requireMalformed(t, err)
		}
	})
	t.Run("LengthExceedsInput", func(t *testing.T) {
		_, err := Unmarshal[any](c, []byte{0x81, 0x0A, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06})
		requireMalformed(t, err)
	})
	t.Run("Trailing", func(t *testing.T) {
		_, err := Unmarshal[any](c, []byte{0x01, 0x01, 0xFF, 0x00})
		assert.ErrorIs(t, requireMalformed(t, err), errTrailingData)
	})
	t.Run("MissingInSequence", func(t *testing.T) {
		tmpl := Sequence(func(s *SequenceReader) (any, error) {
			return Field[any](s, c)
		})
		_, err := Unmarshal(tmpl, []byte{0x30, 0x00})
		assert.ErrorIs(t, requireMalformed(t, err), errMissingValue)
	})
}

func TestChoice_Match(t *testing.T) {
	c := testChoice()
	assert.Equal(t, 3, c.Len())
	assert.True(t, c.Match(asn1.Universal(asn1.TagBoolean)))
	assert.True(t, c.Match(asn1.Context(0)))
	assert.True(t, c.Match(asn1.Context(1)))
	assert.False(t, c.Match(asn1.Context(2)))
	assert.False(t, c.Match(asn1.Universal(asn1.TagOctetString)))
}

func TestChoice_DecodeTagged(t *testing.T) {
	// a CHOICE has no tag of its own
	c := testChoice()
	d := tlv.NewDecoder(bytes.NewReader([]byte{0x81, 0x01, 0x07}))
	got, err := c.DecodeTagged(asn1.Context(9), d)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07}, got)
}

func TestChoice_Overlaps(t *testing.T) {
	t.Run("None", func(t *testing.T) {
		assert.Empty(t, testChoice().Overlaps())
	})
	t.Run("FirstMatchWins", func(t *testing.T) {
		c := NewChoice(
			TaggedVariant(asn1.Context(1), BooleanTemplate{}, identity[bool]),
			TaggedVariant(asn1.Context(1), OctetStringTemplate{}, identity[[]byte]),
		)
		assert.Equal(t, []asn1.Tag{asn1.Context(1)}, c.Overlaps())

		s, err := c.DecodeSelection(tlv.NewDecoder(bytes.NewReader([]byte{0x81, 0x01, 0xFF})))
		require.NoError(t, err)
		assert.Equal(t, 0, s.Index)
		assert.Equal(t, true, s.Value)
	})
	t.Run("CatchAll", func(t *testing.T) {
		c := NewChoice(
			Variant(BooleanTemplate{}, identity[bool]),
			Variant(AnyTemplate{}, identity[RawValue]),
		)
		assert.Equal(t, []asn1.Tag{asn1.Universal(asn1.TagBoolean)}, c.Overlaps())

		s, err := c.DecodeSelection(tlv.NewDecoder(bytes.NewReader([]byte{0x85, 0x00})))
		require.NoError(t, err)
		assert.Equal(t, 1, s.Index)
	})
}

func TestChoice_Immutable(t *testing.T) {
	alts := []Alternative[any]{
		Variant(BooleanTemplate{}, identity[bool]),
	}
	c := NewChoice(alts...)
	alts[0] = TaggedVariant(asn1.Context(1), OctetStringTemplate{}, identity[[]byte])
	assert.True(t, c.Match(asn1.Universal(asn1.TagBoolean)))
	assert.False(t, c.Match(asn1.Context(1)))
}

func TestChoice_Concurrent(t *testing.T) {
	c := testChoice()
	inputs := [][]byte{
		{0x01, 0x01, 0xFF},
		{0x81, 0x02, 0xAA, 0xBB},
		{0xA0, 0x02, 0x05, 0x00},
		{0x85, 0x00},
	}
	var g errgroup.Group
	for i := range 64 {
		data := inputs[i%len(inputs)]
		g.Go(func() error {
			_, err := Unmarshal[any](c, data)
			var ucErr *UnrecognizedChoiceTagError
			if len(data) == 2 && assert.ErrorAs(t, err, &ucErr) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
}
