package cli

import (
	"errors"
	"io"
	"log/slog"

	"codello.dev/dertmpl/der"
)

// NewLogger creates a text logger writing to w. If debug is true, debug
// messages are included.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logDecodeError logs err with attributes describing where decoding failed.
func logDecodeError(log *slog.Logger, err error) {
	var (
		mErr  *der.MalformedEncodingError
		ucErr *der.UnrecognizedChoiceTagError
		tmErr *der.TagMismatchError
		ioErr *der.IOError
	)
	switch {
	case errors.As(err, &ucErr):
		log.Error("decode failed", "kind", "unrecognized choice tag", "tag", ucErr.Tag.String(), "offset", ucErr.Offset)
	case errors.As(err, &tmErr):
		log.Error("decode failed", "kind", "tag mismatch", "expected", tmErr.Expected.String(), "actual", tmErr.Actual.String(), "offset", tmErr.Offset)
	case errors.As(err, &mErr):
		log.Error("decode failed", "kind", "malformed encoding", "tag", mErr.Tag.String(), "offset", mErr.Offset, "err", mErr.Err)
	case errors.As(err, &ioErr):
		log.Error("decode failed", "kind", "io", "op", ioErr.Op, "err", ioErr.Err)
	default:
		log.Error("decode failed", "err", err)
	}
}
