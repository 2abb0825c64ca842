package tlv

import (
	"errors"
	"io"
	"strconv"
)

var (
	errTruncated       = errors.New("truncated data value")
	errExceedsParent   = errors.New("data value exceeds parent")
	errIndefinite      = errors.New("indefinite length not permitted")
	errReservedLength  = errors.New("reserved length octet")
	errNonMinimalLen   = errors.New("length not minimally encoded")
	errLengthTooLarge  = errors.New("length too large")
	errLowTagLongForm  = errors.New("high tag number form for low tag number")
	errReservedTag     = errors.New("reserved tag")
	errValueNotRead    = errors.New("tlv: primitive value not read")
	errNoCurrentValue  = errors.New("tlv: no current data value")
	errUnexpectedState = errors.New("tlv: decoder is in an invalid state")
)

// IOError represents an error that occurred when reading from or writing to an
// underlying data stream. The original error is available via Unwrap.
type IOError struct {
	Op  string // either "read" or "write"
	Err error
}

func (e *IOError) Unwrap() error { return e.Err }
func (e *IOError) Error() string { return e.Op + " error: " + e.Err.Error() }

// SyntaxError represents an error in the TLV encoding. The error value contains
// the location of the error within the input as well as the [Header] of the
// surrounding data value.
type SyntaxError struct {
	requireKeyedLiterals
	nonComparable

	Err error // underlying error

	// ByteOffset is the location of the error. The location is usually the start of
	// the TLV header containing the error.
	ByteOffset int64

	// Header is the TLV header of the constructed TLV whose value contained the
	// malformed data.
	Header Header
}

func (e *SyntaxError) Unwrap() error { return e.Err }
func (e *SyntaxError) Error() string {
	b := []byte("tlv: syntax error")
	if e.Header != (Header{}) {
		b = append(b, " within "...)
		b = append(b, e.Header.String()...)
	}
	if e.ByteOffset > 0 {
		//goland:noinspection GoDirectComparisonOfErrors
		if e.Err == io.ErrUnexpectedEOF {
			b = strconv.AppendInt(append(b, " at offset "...), e.ByteOffset, 10)
		} else {
			b = strconv.AppendInt(append(b, " for TLV beginning at offset "...), e.ByteOffset, 10)
		}
	}
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}

// requireKeyedLiterals can be embedded in a struct to require keyed literals.
type requireKeyedLiterals struct{}

// nonComparable can be embedded in a struct to prevent comparability.
type nonComparable [0]func()

// noEOF returns err, unless err == io.EOF, in which case it returns io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
