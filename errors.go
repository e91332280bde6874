package gif

import (
	"errors"
	"fmt"
	"io"

	pkgerrors "github.com/pkg/errors"
)

// isEOF reports whether err is io.EOF or io.ErrUnexpectedEOF, the two
// sentinel errors that mean "the stream ended early" rather than a
// genuine I/O fault.
func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// An InvalidStateError reports that an operation was invoked while the
// codec was in a phase that does not permit it, or after the codec had
// already transitioned to the Error phase. It never mutates codec state.
type InvalidStateError struct {
	Op    string
	Phase Phase
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("gif: %s: invalid in phase %s", e.Op, e.Phase)
}

// An InvalidArgumentError reports that a caller-supplied value lies
// outside its documented domain. It never mutates codec state.
type InvalidArgumentError struct {
	Op  string
	Msg string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("gif: %s: invalid argument: %s", e.Op, e.Msg)
}

// A TruncatedError reports that the underlying stream ended before enough
// bytes could be read to complete an operation.
type TruncatedError struct {
	Op  string
	Err error
}

func (e *TruncatedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gif: %s: truncated stream: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("gif: %s: truncated stream", e.Op)
}

func (e *TruncatedError) Unwrap() error { return e.Err }

// A MalformedError reports that bytes were read successfully but violate
// the container or LZW format. Msg names the invariant that failed.
type MalformedError struct {
	Op  string
	Msg string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("gif: %s: malformed: %s", e.Op, e.Msg)
}

// An IoError wraps an underlying I/O failure from the stream the codec
// is reading from or writing to.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("gif: %s: %s", e.Op, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// wrapIO classifies an I/O failure as Truncated (clean or unexpected EOF)
// or Io (anything else), wrapping the cause with a stack trace via
// github.com/pkg/errors so the original call site can still be recovered
// with errors.Cause.
func wrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	if isEOF(err) {
		return &TruncatedError{Op: op, Err: pkgerrors.Wrap(err, op)}
	}
	return &IoError{Op: op, Err: pkgerrors.Wrap(err, op)}
}

func malformed(op, msg string) error {
	return &MalformedError{Op: op, Msg: msg}
}

func invalidArgument(op, msg string) error {
	return &InvalidArgumentError{Op: op, Msg: msg}
}

func invalidState(op string, phase Phase) error {
	return &InvalidStateError{Op: op, Phase: phase}
}
