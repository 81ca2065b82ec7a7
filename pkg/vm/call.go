package vm

import (
	"fmt"

	"phonscript/pkg/errors"
)

const debugCalls = false

// nativeFile is the location reported in traces for host functions.
const nativeFile = "native"

// Call invokes the callable below its receiver and n arguments. The stack
// must hold [..., callee, this, a1, ..., an]; on success those n+2 slots are
// replaced by the single result. On error the slots are dropped and the
// returned error is the *Exception being unwound.
func (rt *Runtime) Call(n int) error {
	if err := rt.checkOverflow(); err != nil {
		return err
	}
	fnIdx := len(rt.stack) - n - 2
	if n < 0 || fnIdx < rt.bot {
		return rt.Raise(errors.KindRuntime, "stack underflow in call")
	}
	callee := rt.stack[fnIdx]
	if !callee.IsCallable() {
		rt.truncate(fnIdx)
		return rt.unwind(rt.RaiseTypeError("%s is not a function", callee.TypeName()))
	}
	fn := callee.AsObject()
	body := rt.callBody(fn)
	return rt.invoke(fnIdx, fn, body)
}

// Construct invokes a constructor with n arguments. The stack must hold
// [..., ctor, a1, ..., an]; on success those n+1 slots are replaced by the
// new object.
//
// Native constructors receive a null `this` and allocate the object
// themselves. Any other callable gets a fresh Plain object inheriting from
// its `meta` field as `this`; if it returns a non-object, that object is the
// result.
func (rt *Runtime) Construct(n int) error {
	if err := rt.checkOverflow(); err != nil {
		return err
	}
	fnIdx := len(rt.stack) - n - 1
	if n < 0 || fnIdx < rt.bot {
		return rt.Raise(errors.KindRuntime, "stack underflow in construct")
	}
	callee := rt.stack[fnIdx]
	if !callee.IsCallable() {
		rt.truncate(fnIdx)
		return rt.unwind(rt.RaiseTypeError("%s is not a constructor", callee.TypeName()))
	}
	fn := callee.AsObject()
	if len(rt.stack) >= rt.config.StackSize {
		rt.truncate(fnIdx)
		return rt.unwind(rt.Raise(errors.KindRuntime, "stack overflow"))
	}

	if fn.kind == KindNativeFunction && fn.native.Construct != nil {
		rt.insertAt(fnIdx+1, Null)
		return rt.invoke(fnIdx, fn, fn.native.Construct)
	}

	proto := rt.registry.Meta(KindPlain)
	if m, ok := fn.GetOwn("meta"); ok && m.IsObject() {
		proto = m.AsObject()
	}
	obj := NewObject(KindPlain, proto)
	rt.insertAt(fnIdx+1, ObjectValue(obj))
	if err := rt.invoke(fnIdx, fn, rt.callBody(fn)); err != nil {
		return err
	}
	if !rt.Top().IsObject() {
		rt.Replace(-1, ObjectValue(obj))
	}
	return nil
}

// PCall is a protected Call: if the callee raises, the error is caught, the
// runtime returns to the normal state and the thrown value (an Error object
// for runtime errors) is left on the stack in place of the result. The
// caught exception is returned, nil on success.
func (rt *Runtime) PCall(n int) *Exception {
	return rt.protect(rt.Call(n))
}

// PConstruct is the protected form of Construct.
func (rt *Runtime) PConstruct(n int) *Exception {
	return rt.protect(rt.Construct(n))
}

// checkOverflow raises for a Push that was dropped since the last check.
func (rt *Runtime) checkOverflow() error {
	if !rt.overflow {
		return nil
	}
	rt.overflow = false
	return rt.Raise(errors.KindRuntime, "stack overflow")
}

func (rt *Runtime) protect(err error) *Exception {
	if err == nil {
		return nil
	}
	exc := rt.exceptionFrom(err)
	rt.catch(exc)
	rt.Push(exc.value)
	return exc
}

// CallValue calls fn with the given receiver and arguments and returns the
// result, leaving the stack as it found it.
func (rt *Runtime) CallValue(fn, this Value, args ...Value) (Value, error) {
	if err := rt.CheckStack(len(args) + 2); err != nil {
		return Undefined, err
	}
	rt.Push(fn)
	rt.Push(this)
	for _, a := range args {
		rt.Push(a)
	}
	if err := rt.Call(len(args)); err != nil {
		return Undefined, err
	}
	result := rt.Top()
	rt.Pop(1)
	return result, nil
}

// New constructs an instance with ctor and returns it, leaving the stack as
// it found it.
func (rt *Runtime) New(ctor Value, args ...Value) (Value, error) {
	// ctor, the receiver Construct inserts, then the arguments.
	if err := rt.CheckStack(len(args) + 2); err != nil {
		return Undefined, err
	}
	rt.Push(ctor)
	for _, a := range args {
		rt.Push(a)
	}
	if err := rt.Construct(len(args)); err != nil {
		return Undefined, err
	}
	result := rt.Top()
	rt.Pop(1)
	return result, nil
}

// CallMethod looks up name on the receiver and calls it.
func (rt *Runtime) CallMethod(this Value, name string, args ...Value) (Value, error) {
	fn, err := rt.GetValue(this, name)
	if err != nil {
		return Undefined, err
	}
	if !fn.IsCallable() {
		return Undefined, rt.RaiseTypeError("'%s' is not a function", name)
	}
	return rt.CallValue(fn, this, args...)
}

func (rt *Runtime) callBody(fn *Object) NativeFunc {
	if fn.kind == KindNativeFunction {
		return fn.native.Call
	}
	return fn.script.Body.Run
}

func (rt *Runtime) frameFor(fn *Object) errors.Frame {
	if fn.kind == KindFunction {
		return errors.Frame{Function: functionName(fn), File: fn.script.File, Line: fn.script.Line}
	}
	return errors.Frame{Function: functionName(fn), File: nativeFile}
}

func arityOf(fn *Object) int {
	if fn.kind == KindNativeFunction {
		return fn.native.Arity
	}
	return fn.script.Arity
}

// invoke runs body in a new frame whose base is the slot after fnIdx (the
// receiver). Missing arguments are padded with Undefined up to the
// callee's arity. The frame collapses to one result slot at fnIdx.
func (rt *Runtime) invoke(fnIdx int, fn *Object, body NativeFunc) error {
	if len(rt.frames) == 0 && rt.state != StateNormal {
		rt.state = StateNormal
		rt.current = nil
	}
	if len(rt.frames) >= rt.config.MaxCallDepth {
		rt.truncate(fnIdx)
		return rt.unwind(rt.Raise(errors.KindRuntime, "call stack overflow"))
	}

	argc := len(rt.stack) - fnIdx - 2
	if pad := arityOf(fn) - argc; pad > 0 {
		if len(rt.stack)+pad > rt.config.StackSize {
			rt.truncate(fnIdx)
			return rt.unwind(rt.Raise(errors.KindRuntime, "stack overflow"))
		}
		for range pad {
			rt.PushUndefined()
		}
	}

	frame := rt.frameFor(fn)
	if debugCalls {
		fmt.Printf("[DEBUG call.go] enter %s argc=%d depth=%d\n", frame.Function, argc, len(rt.frames))
	}

	savedBot := rt.bot
	rt.frames = append(rt.frames, frame)
	rt.bot = fnIdx + 1
	base := len(rt.stack)

	err := body(rt)
	if err == nil {
		err = rt.checkOverflow()
	}
	rt.overflow = false

	var exc *Exception
	if err != nil {
		// Converted while the frame is still active so host errors get a
		// trace that includes the function that returned them.
		exc = rt.exceptionFrom(err)
	}
	rt.frames = rt.frames[:len(rt.frames)-1]
	rt.bot = savedBot

	if exc != nil {
		rt.truncate(fnIdx)
		if debugCalls {
			fmt.Printf("[DEBUG call.go] unwind %s: [%s] %s\n", frame.Function, exc.kind, exc.message)
		}
		return rt.unwind(exc)
	}

	result := Undefined
	if len(rt.stack) > base {
		result = rt.stack[len(rt.stack)-1]
	}
	rt.truncate(fnIdx)
	if len(rt.stack) >= rt.config.StackSize {
		return rt.unwind(rt.Raise(errors.KindRuntime, "stack overflow"))
	}
	rt.Push(result)
	if debugCalls {
		fmt.Printf("[DEBUG call.go] leave %s -> %s\n", frame.Function, result.Inspect())
	}
	return nil
}

// unwind moves a raised exception into the unwinding state.
func (rt *Runtime) unwind(exc *Exception) error {
	rt.state = StateUnwinding
	rt.current = exc
	return exc
}
