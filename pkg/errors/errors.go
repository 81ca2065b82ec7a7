package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kinds raised by the runtime itself. Host code may raise errors with any
// other kind string (e.g. "Statistics error", "Input/Output error").
const (
	KindError     = "Error"
	KindType      = "Type error"
	KindRange     = "Range error"
	KindReference = "Reference error"
	KindIndex     = "Index error"
	KindRuntime   = "Runtime error"
	KindSyntax    = "Syntax error"
)

// PhonError is the interface implemented by errors that cross the
// runtime/host boundary.
type PhonError interface {
	error // Embed the standard error interface
	Kind() string
	// Message returns the specific error message without kind or trace info.
	Message() string
	Frames() []Frame
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// Record is the structured form of an unhandled script error as seen by the
// host application. It always has a kind and a message; the trace may be
// empty when capture was disabled.
type Record struct {
	kind  string
	Msg   string
	Trace []Frame
	Cause error // Underlying cause, if any
}

// New creates a record with the given kind and message.
func New(kind, msg string) *Record {
	if kind == "" {
		kind = KindError
	}
	return &Record{kind: kind, Msg: msg}
}

// Newf is New with fmt-style formatting of the message.
func Newf(kind, format string, args ...any) *Record {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *Record) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.kind, e.Msg)
	for _, f := range e.Trace {
		sb.WriteString("\n\t")
		sb.WriteString(f.String())
	}
	return sb.String()
}
func (e *Record) Kind() string    { return e.kind }
func (e *Record) Message() string { return e.Msg }
func (e *Record) Frames() []Frame { return e.Trace }
func (e *Record) Unwrap() error   { return e.Cause }
func (e *Record) CausedBy(cause error) *Record {
	e.Cause = cause
	return e
}

// WithTrace attaches call-frame descriptors, innermost first.
func (e *Record) WithTrace(frames []Frame) *Record {
	e.Trace = frames
	return e
}

// Is reports whether target is a Record of the same kind. This lets callers
// write errors.Is(err, errors.New(errors.KindType, "")).
func (e *Record) Is(target error) bool {
	t, ok := target.(*Record)
	if !ok {
		return false
	}
	return t.kind == e.kind && (t.Msg == "" || t.Msg == e.Msg)
}

// AsRecord converts any error into a Record. PhonErrors keep their kind,
// message and frames; anything else becomes a generic "Error".
func AsRecord(err error) *Record {
	if err == nil {
		return nil
	}
	var rec *Record
	if errors.As(err, &rec) {
		return rec
	}
	var pe PhonError
	if errors.As(err, &pe) {
		return &Record{kind: pe.Kind(), Msg: pe.Message(), Trace: pe.Frames(), Cause: err}
	}
	msg := err.Error()
	if msg == "" {
		msg = "unknown error"
	}
	return &Record{kind: KindError, Msg: msg, Cause: err}
}

// --- Error Reporting ---

// Display writes a record to w in the same layout the runtime uses for
// Error(): "[kind] message" followed by one indented line per frame.
func Display(w io.Writer, err error) {
	rec := AsRecord(err)
	if rec == nil {
		return
	}
	fmt.Fprintln(w, rec.Error())
}
