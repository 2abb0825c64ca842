package tlv

import (
	"errors"
	"io"
)

// byteReader is implemented by sources that the [Decoder] can read from
// without buffering.
type byteReader interface {
	io.Reader
	io.ByteReader
}

// byteReaderFunc adapts a function to [io.ByteReader].
type byteReaderFunc func() (byte, error)

func (f byteReaderFunc) ReadByte() (byte, error) { return f() }

// maxEmptyReads is the number of consecutive reads without data after which a
// buffer fill fails with [io.ErrNoProgress].
const maxEmptyReads = 100

var errNegativeRead = errors.New("tlv: reader returned negative count from Read")

// bufferedReader buffers an underlying reader but never reads more than a
// budget of bytes ahead of its caller. The [Decoder] sets the budget to the
// unread length of the current top-level TLV, so the bytes that follow it stay
// in the underlying reader.
//
// A negative budget is unrestricted. With a budget of 0 every read goes to the
// underlying reader directly once the buffer is drained.
type bufferedReader struct {
	src    io.Reader
	buf    []byte
	head   int // index of the next unread byte in buf
	tail   int // end of the valid data in buf
	budget int
	err    error // pending error of src
}

// Reset discards all buffered data and makes b read from r. The buffer memory
// is kept.
func (b *bufferedReader) Reset(r io.Reader) {
	buf := b.buf
	if buf == nil && r != nil {
		buf = make([]byte, 1024)
	}
	*b = bufferedReader{src: r, buf: buf}
}

// SetLimit sets the read-ahead budget of b to n bytes. Data that is already
// buffered does not count against the budget.
func (b *bufferedReader) SetLimit(n int) { b.budget = n }

// Buffered returns the number of bytes that can be read without touching the
// underlying reader.
func (b *bufferedReader) Buffered() int { return b.tail - b.head }

// readSource reads once from the underlying reader and charges the result
// against the budget. The error is kept pending in b.err.
func (b *bufferedReader) readSource(p []byte) int {
	n, err := b.src.Read(p)
	if n < 0 {
		panic(errNegativeRead)
	}
	if b.budget > 0 {
		b.budget = max(b.budget-n, 0)
	}
	b.err = err
	return n
}

// space returns the free part of the buffer that the budget allows to fill.
func (b *bufferedReader) space() []byte {
	end := len(b.buf)
	if b.budget >= 0 {
		end = min(end, b.tail+b.budget)
	}
	return b.buf[b.tail:end]
}

// fill reads into the empty buffer until at least one byte is available or the
// underlying reader fails.
func (b *bufferedReader) fill() {
	b.head, b.tail = 0, 0
	for range maxEmptyReads {
		b.tail += b.readSource(b.space())
		if b.err != nil || b.tail > 0 {
			return
		}
	}
	b.err = io.ErrNoProgress
}

// takeErr returns the pending error and clears it.
func (b *bufferedReader) takeErr() error {
	err := b.err
	b.err = nil
	return err
}

// Read implements [io.Reader].
func (b *bufferedReader) Read(p []byte) (int, error) {
	if b.Buffered() == 0 {
		if b.err != nil || len(p) == 0 {
			return 0, b.takeErr()
		}
		if b.budget == 0 || len(p) >= len(b.buf) {
			n := b.readSource(p)
			return n, b.takeErr()
		}
		// a single read, fill would retry on empty reads
		b.head = 0
		b.tail = 0
		if b.tail = b.readSource(b.space()); b.tail == 0 {
			return 0, b.takeErr()
		}
	}
	n := copy(p, b.buf[b.head:b.tail])
	b.head += n
	return n, nil
}

// ReadByte implements [io.ByteReader].
func (b *bufferedReader) ReadByte() (byte, error) {
	for b.Buffered() == 0 {
		if b.err != nil {
			return 0, b.takeErr()
		}
		if b.budget == 0 {
			return b.readSourceByte()
		}
		b.fill()
	}
	c := b.buf[b.head]
	b.head++
	return c, nil
}

// readSourceByte reads a single byte from the underlying reader, bypassing the
// buffer.
func (b *bufferedReader) readSourceByte() (byte, error) {
	if br, ok := b.src.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var c [1]byte
	_, err := io.ReadFull(b.src, c[:])
	return c[0], err
}
