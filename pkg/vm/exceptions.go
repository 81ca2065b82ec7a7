package vm

import (
	goerrors "errors"
	"fmt"
	"log/slog"

	"phonscript/pkg/config"
	"phonscript/pkg/errors"
)

const debugExceptions = false

// Exception is the Go error carrying a raised script error through every
// call boundary. It holds the script-visible Error value as well as the
// structured kind, message and trace so the host never has to read them
// back out of the object.
type Exception struct {
	value   Value
	kind    string
	message string
	frames  []errors.Frame // innermost first
}

var _ errors.PhonError = (*Exception)(nil)

func (e *Exception) Error() string          { return e.Record().Error() }
func (e *Exception) Kind() string           { return e.kind }
func (e *Exception) Message() string        { return e.message }
func (e *Exception) Frames() []errors.Frame { return e.frames }
func (e *Exception) Unwrap() error          { return nil }

// Value returns the thrown script value (usually an Error object).
func (e *Exception) Value() Value { return e.value }

// Record converts the exception to the host-boundary form. The message is
// never empty.
func (e *Exception) Record() *errors.Record {
	msg := e.message
	if msg == "" {
		msg = e.kind
	}
	return errors.New(e.kind, msg).WithTrace(e.frames)
}

// NewError allocates an Error object of the given kind. The object inherits
// from the kind's meta (Error.meta when the kind has none) and carries name,
// message and, when trace capture is on, stackTrace.
func (rt *Runtime) NewError(kind, message string) *Object {
	if kind == "" {
		kind = errors.KindError
	}
	obj := NewObject(KindError, rt.registry.ErrorMeta(kind))
	obj.DefineOwn("name", NewString(kind), DontEnum)
	obj.DefineOwn("message", NewString(message), DontEnum)
	if rt.config.CaptureTraces {
		rt.attachTrace(obj, rt.captureFrames())
	}
	return obj
}

func (rt *Runtime) attachTrace(obj *Object, frames []errors.Frame) {
	lines := make([]Value, len(frames))
	for i, f := range frames {
		lines[i] = NewString(f.String())
	}
	obj.DefineOwn("stackTrace", ObjectValue(rt.NewArray(lines...)), DontEnum)
}

// captureFrames returns the active call frames, innermost first.
func (rt *Runtime) captureFrames() []errors.Frame {
	if !rt.config.CaptureTraces || len(rt.frames) == 0 {
		return nil
	}
	out := make([]errors.Frame, len(rt.frames))
	for i, f := range rt.frames {
		out[len(rt.frames)-1-i] = f
	}
	return out
}

// Raise creates an Error object of the given kind and switches the runtime
// into the raised state. Natives return the result:
//
//	return rt.Raise(errors.KindType, "not a boolean")
func (rt *Runtime) Raise(kind, format string, args ...any) *Exception {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	obj := rt.NewError(kind, msg)
	exc := &Exception{value: ObjectValue(obj), kind: obj.errorKind(), message: msg, frames: rt.captureFrames()}
	rt.raised(exc)
	return exc
}

// RaiseTypeError raises a "Type error".
func (rt *Runtime) RaiseTypeError(format string, args ...any) *Exception {
	return rt.Raise(errors.KindType, format, args...)
}

// RaiseRangeError raises a "Range error".
func (rt *Runtime) RaiseRangeError(format string, args ...any) *Exception {
	return rt.Raise(errors.KindRange, format, args...)
}

// Throw raises an arbitrary value. Error objects keep their name and
// message; other values are raised with kind "Error" and their string form
// as message.
func (rt *Runtime) Throw(v Value) *Exception {
	exc := &Exception{value: v, kind: errors.KindError, frames: rt.captureFrames()}
	if v.IsKind(KindError) {
		obj := v.AsObject()
		exc.kind = obj.errorKind()
		if m, ok := obj.GetOwn("message"); ok {
			exc.message = m.ToString()
		}
		if _, ok := obj.GetOwn("stackTrace"); !ok && exc.frames != nil {
			rt.attachTrace(obj, exc.frames)
		}
	} else {
		exc.message = v.ToString()
	}
	rt.raised(exc)
	return exc
}

func (rt *Runtime) raised(exc *Exception) {
	if debugExceptions {
		fmt.Printf("[DEBUG exceptions.go] raise [%s] %s depth=%d\n", exc.kind, exc.message, len(rt.frames))
	}
	rt.state = StateRaised
	rt.current = exc
	rt.logger.Debug("raise",
		slog.String("kind", exc.kind),
		slog.String("message", exc.message),
		slog.Int("depth", len(rt.frames)))
}

// exceptionFrom converts any error returned by a native or script body
// into an Exception. Host errors implementing errors.PhonError keep their
// kind and message.
func (rt *Runtime) exceptionFrom(err error) *Exception {
	var exc *Exception
	if goerrors.As(err, &exc) {
		return exc
	}
	kind, msg := errors.KindError, err.Error()
	var pe errors.PhonError
	if goerrors.As(err, &pe) {
		kind, msg = pe.Kind(), pe.Message()
	}
	if msg == "" {
		msg = "unknown error"
	}
	exc = rt.Raise(kind, "%s", msg)
	if pe != nil && len(pe.Frames()) > 0 {
		exc.frames = pe.Frames()
	}
	return exc
}

// Current returns the exception being raised or unwound, or nil.
func (rt *Runtime) Current() *Exception { return rt.current }

// catch ends unwinding: the runtime returns to the normal state and the
// exception is handed to the handler.
func (rt *Runtime) catch(exc *Exception) {
	if debugExceptions {
		fmt.Printf("[DEBUG exceptions.go] caught [%s] %s\n", exc.kind, exc.message)
	}
	rt.logger.Debug("catch", slog.String("kind", exc.kind), slog.String("message", exc.message))
	rt.state = StateNormal
	rt.current = nil
}

// Propagate surfaces err at the host boundary. It marks the runtime as
// propagated and returns the structured record; nil in, nil out.
func (rt *Runtime) Propagate(err error) *errors.Record {
	if err == nil {
		return nil
	}
	var exc *Exception
	if !goerrors.As(err, &exc) {
		exc = rt.exceptionFrom(err)
	}
	rt.state = StatePropagated
	rt.current = nil
	rec := exc.Record()
	rt.logger.Debug("propagate", slog.String("kind", rec.Kind()), slog.String("message", rec.Message()))
	return rec
}

// errorKind reads the kind of an Error object from its name field.
func (o *Object) errorKind() string {
	if v, ok := o.GetOwn("name"); ok && v.IsString() && v.AsString() != "" {
		return v.AsString()
	}
	for p, depth := o.prototype, 0; p != nil && depth < config.DefaultMaxPrototypeDepth; p, depth = p.prototype, depth+1 {
		if v, ok := p.GetOwn("name"); ok && v.IsString() {
			return v.AsString()
		}
	}
	return errors.KindError
}
