package tlv

import (
	"bytes"
	"errors"
	"io"
	"math"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/internal/vlq"
)

// maxContentGrow is the maximum number of bytes [Decoder.ReadContents]
// allocates in advance. Larger values grow as data actually arrives so that a
// forged length cannot force a large allocation.
const maxContentGrow = 64 << 10

//region Decoder

// Decoder is a streaming decoder for the TLV format of the Distinguished
// Encoding Rules. It is used to read a stream of top-level tag-length-value
// (TLV) constructs.
//
// The Decoder validates the DER framing rules: lengths must be definite and
// minimally encoded, tag numbers below 31 must use the low-tag-number form and
// high tag numbers must be minimally encoded. Nested values must fit into
// their parent.
//
// Decoder can be used in presence of transient errors from the underlying
// reader while reading headers. If an [IOError] is returned by
// [Decoder.PeekHeader] or [Decoder.ReadHeader], the call can be retried. All
// other errors are permanent: once a [SyntaxError] has been returned, every
// subsequent call returns the same error.
type Decoder struct {
	state
	br  byteReader
	buf bufferedReader // internal buffering

	// peekBuf stores the bytes read during the last PeekHeader operation so we can
	// recover from transient I/O errors and so that the raw bytes of a peeked
	// header are still available if the surrounding value is read as a whole.
	//
	// peekAt indicates the next read position in peekBuf and peekLen the number of
	// valid bytes in peekBuf.
	peekBuf [maxHeaderLen]byte
	peekAt  int
	peekLen int
	peeked  bool
	peekHdr Header

	err error // permanent error
}

// NewDecoder creates a new Decoder reading from r. If r does not implement
// [io.ByteReader], Decoder will do its own buffering. The buffering mechanism
// of Decoder buffers at most the bytes that belong to the current top-level
// TLV, so a single reader can hold multiple consecutive encodings.
func NewDecoder(r io.Reader) *Decoder {
	d := new(Decoder)
	d.Reset(r)
	return d
}

// Reset resets the state of d to read from r. See [NewDecoder] for details.
//
// Reset reuses the internal buffer of d which may save some allocations
// compared to [NewDecoder].
func (d *Decoder) Reset(r io.Reader) {
	d.state.reset()

	if br, ok := r.(byteReader); ok {
		// allow previous reader to be garbage-collected, but keep the allocated buffer
		d.buf.Reset(nil)
		d.br = br
	} else {
		d.buf.Reset(r)
		d.br = &d.buf
	}

	d.peekAt = 0
	d.peekLen = 0
	d.peeked = false
	d.err = nil
}

// PeekHeader reads the next TLV header from the input without advancing d. You
// can consume the peeked header using the ReadHeader method.
//
// At the end of a constructed data value PeekHeader returns [EndOfContents].
// At the end of the input stream (at the top level) PeekHeader returns
// [io.EOF]. If the input ends in the middle of a TLV, a [SyntaxError] wrapping
// [io.ErrUnexpectedEOF] is returned.
//
// PeekHeader must not be called while the current data value is primitive.
// Use [Decoder.ReadContents] or [Decoder.Skip] to consume it first.
func (d *Decoder) PeekHeader() (Header, error) {
	if d.err != nil {
		return Header{}, d.err
	}
	if !d.curr.Constructed {
		return Header{}, errValueNotRead
	}
	if d.peeked {
		return d.peekHdr, nil
	}
	if d.remaining() == 0 {
		return EndOfContents, nil
	}

	d.peekAt = 0
	h, err := d.decodeHeader()
	if err == nil {
		err = d.checkHeader(h)
	}
	if err != nil {
		var ioErr *IOError
		if errors.As(err, &ioErr) {
			return Header{}, err
		}
		//goland:noinspection GoDirectComparisonOfErrors
		if err == io.EOF && d.root() && d.peekLen == 0 {
			return Header{}, io.EOF
		}
		err = noEOF(err)
		sErr := &SyntaxError{ByteOffset: d.offset, Err: err}
		if !d.root() {
			sErr.Header = d.curr.Header
		}
		//goland:noinspection GoDirectComparisonOfErrors
		if err == io.ErrUnexpectedEOF {
			sErr.ByteOffset += int64(d.peekLen)
		}
		d.err = sErr
		return Header{}, sErr
	}
	d.peeked = true
	d.peekHdr = h
	return h, nil
}

// ReadHeader reads the next TLV header from the input. At the end of
// constructed TLVs [EndOfContents] is returned. ReadHeader has the same error
// semantics as [Decoder.PeekHeader].
//
// If the returned header is primitive, its contents must be consumed using
// [Decoder.ReadContents] or [Decoder.Skip] before the next header can be read.
// The contents of a constructed header can be read header by header, or as a
// whole using [Decoder.ReadContents].
func (d *Decoder) ReadHeader() (Header, error) {
	h, err := d.PeekHeader()
	if err != nil {
		return h, err
	}
	if h == EndOfContents {
		d.state.pop()
	} else {
		d.state.push(h, d.peekAt)
		d.peeked = false
		d.peekAt = 0
		d.peekLen = 0
	}
	d.adjustBuffer()
	return h, nil
}

// ReadContents reads the remaining content octets of the current data value
// and finishes it. For constructed values the returned bytes are the raw
// encodings of the remaining nested TLVs, which are not validated. The
// returned slice is never nil.
func (d *Decoder) ReadContents() ([]byte, error) {
	var buf bytes.Buffer
	if r := d.remaining(); r > 0 {
		buf.Grow(int(min(r, maxContentGrow)))
	}
	if err := d.consume(&buf); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return []byte{}, nil
	}
	return buf.Bytes(), nil
}

// Skip discards the remainder of the current data value. If it uses the
// primitive encoding, only that value is discarded. If it is constructed,
// everything until the end of the value is discarded without validation.
func (d *Decoder) Skip() error {
	return d.consume(io.Discard)
}

// consume writes the unread bytes of the current data value to w and removes
// the value from the stack. Errors during consume are permanent.
func (d *Decoder) consume(w io.Writer) error {
	if d.err != nil {
		return d.err
	}
	if d.root() {
		return errNoCurrentValue
	}
	if d.peekLen > 0 {
		// the bytes of a peeked (or partially read) header belong to the current value
		_, _ = w.Write(d.peekBuf[:d.peekLen])
		d.offset += int64(d.peekLen)
		d.peeked = false
		d.peekAt = 0
		d.peekLen = 0
	}
	n, err := io.CopyN(w, d.br, d.remaining())
	d.offset += n
	//goland:noinspection GoDirectComparisonOfErrors
	if err == io.EOF {
		d.err = &SyntaxError{ByteOffset: d.offset, Header: d.curr.Header, Err: io.ErrUnexpectedEOF}
		return d.err
	} else if err != nil {
		d.err = &IOError{"read", err}
		return d.err
	}
	d.state.pop()
	d.adjustBuffer()
	return nil
}

// adjustBuffer limits the internal buffering to the remainder of the current
// top-level data value.
func (d *Decoder) adjustBuffer() {
	if d.br != &d.buf {
		return
	}
	if d.root() {
		d.buf.SetLimit(0)
		return
	}
	top := d.curr
	if len(d.stack) > 1 {
		top = d.stack[1]
	}
	d.buf.SetLimit(max(int(top.End-d.offset)-d.buf.Buffered(), 0))
}

// checkHeader validates h in the context of the current state of d.
func (d *Decoder) checkHeader(h Header) error {
	if h.Tag == asn1.Universal(TagEndOfContents) {
		return errReservedTag
	}
	if r := d.remaining(); r >= 0 && int64(d.peekAt)+int64(h.Length) > r {
		return errExceedsParent
	}
	return nil
}

// decodeHeader decodes a TLV header from d. If the encoded TLV header is
// invalid, or an I/O error occurs, an error is returned. An error is also
// returned if the header is syntactically valid but violates the DER
// restrictions on headers.
func (d *Decoder) decodeHeader() (h Header, err error) {
	b, err := d.readByte()
	if err != nil {
		return Header{}, err
	}
	h = Header{
		Tag:         asn1.Tag{Class: asn1.Class(b >> 6), Number: uint(b & 0x1f)},
		Constructed: b&0x20 == 0x20,
	}

	// If the bottom five bits are set, then the tag number is actually VLQ-encoded
	if b&0x1f == 0x1f {
		var n uint
		if n, err = vlq.Read[uint](byteReaderFunc(d.readByte)); err != nil {
			return h, noEOF(err)
		}
		if n < 31 {
			return h, errLowTagLongForm
		}
		h.Tag.Number = n
	}

	if b, err = d.readByte(); err != nil {
		return h, noEOF(err)
	}
	switch {
	case b&0x80 == 0:
		// The length is encoded in the bottom 7 bits.
		h.Length = int(b & 0x7f)
	case b == 0x80:
		return h, errIndefinite
	case b == 0xff:
		return h, errReservedLength
	default:
		// Bottom 7 bits give the number of length bytes to follow.
		numBytes := int(b & 0x7f)
		if numBytes > 8 {
			return h, errLengthTooLarge
		}
		for i := 0; i < numBytes; i++ {
			if b, err = d.readByte(); err != nil {
				return h, noEOF(err)
			}
			if i == 0 && b == 0 {
				return h, errNonMinimalLen
			}
			if h.Length > math.MaxInt>>8 {
				// We can't shift h.Length up without overflowing.
				return h, errLengthTooLarge
			}
			h.Length = h.Length<<8 | int(b)
		}
		if h.Length < 128 {
			return h, errNonMinimalLen
		}
	}
	return h, nil
}

// readByte reads a single header byte. If d.peekBuf holds bytes from a previous
// attempt, reads are made from d.peekBuf first. Reads from the underlying
// reader are stored in d.peekBuf to enable the retry mechanism for transient
// errors.
func (d *Decoder) readByte() (b byte, err error) {
	if r := d.remaining(); r >= 0 && int64(d.peekAt) >= r {
		return 0, errTruncated
	}
	if d.peekAt == len(d.peekBuf) {
		return 0, errUnexpectedState
	}

	if d.peekAt < d.peekLen {
		b = d.peekBuf[d.peekAt]
	} else if b, err = d.br.ReadByte(); err == nil {
		d.peekBuf[d.peekAt] = b
		d.peekLen++
	} else if err != io.EOF {
		return 0, &IOError{"read", err}
	} else {
		return 0, err
	}

	d.peekAt++
	return b, nil
}

// InputOffset returns the current input byte offset. This is the location of
// the next unread byte that belongs to the TLV stream. Peeked headers are not
// considered read. The number of bytes actually read from the underlying
// [io.Reader] may be more than this offset due to internal buffering effects.
func (d *Decoder) InputOffset() int64 {
	return d.offset
}

// StackDepth returns the number of nested TLVs of the current location of d.
// It is incremented whenever a header is read and decremented whenever a value
// ends. The depth is zero-indexed, where zero represents the (virtual)
// top-level.
func (d *Decoder) StackDepth() int { return len(d.stack) }

// Current returns the header of the innermost data value that is currently
// being processed. At the top level Current returns [EndOfContents].
func (d *Decoder) Current() Header {
	if d.root() {
		return EndOfContents
	}
	return d.curr.Header
}

//endregion
