package vm

import "phonscript/pkg/errors"

// Stack indices follow one convention throughout: a negative index counts
// from the top (-1 is the top value), a non-negative index counts from the
// current frame's base, where 0 is `this` and 1..n are the arguments.

// Push appends v. Pushes past the configured stack size are dropped and
// remembered; the next Call, Construct or native return raises a stack
// overflow.
func (rt *Runtime) Push(v Value) {
	if len(rt.stack) >= rt.config.StackSize {
		rt.overflow = true
		return
	}
	rt.stack = append(rt.stack, v)
}

func (rt *Runtime) PushUndefined()        { rt.Push(Undefined) }
func (rt *Runtime) PushNull()             { rt.Push(Null) }
func (rt *Runtime) PushBoolean(b bool)    { rt.Push(BooleanValue(b)) }
func (rt *Runtime) PushNumber(f float64)  { rt.Push(NumberValue(f)) }
func (rt *Runtime) PushString(s string)   { rt.Push(NewString(s)) }
func (rt *Runtime) PushObject(o *Object)  { rt.Push(ObjectValue(o)) }
func (rt *Runtime) PushGlobal()           { rt.Push(ObjectValue(rt.global)) }

// Return pushes v as the result of a native function so natives can write
// `return rt.Return(v)`. It raises when the stack is full.
func (rt *Runtime) Return(v Value) error {
	if len(rt.stack) >= rt.config.StackSize {
		return rt.Raise(errors.KindRuntime, "stack overflow")
	}
	rt.Push(v)
	return nil
}

// Pop removes n values from the top of the stack. Popping below the current
// frame base is clamped.
func (rt *Runtime) Pop(n int) {
	newTop := len(rt.stack) - n
	if newTop < rt.bot {
		newTop = rt.bot
	}
	if newTop < 0 {
		newTop = 0
	}
	clear(rt.stack[newTop:])
	rt.stack = rt.stack[:newTop]
}

// TopCount is the number of values in the current frame, including `this`.
func (rt *Runtime) TopCount() int { return len(rt.stack) - rt.bot }

// StackSize is the total number of values on the stack.
func (rt *Runtime) StackSize() int { return len(rt.stack) }

func (rt *Runtime) absIndex(idx int) int {
	if idx < 0 {
		return len(rt.stack) + idx
	}
	return rt.bot + idx
}

// Get returns the value at idx, or Undefined when idx is outside the stack.
func (rt *Runtime) Get(idx int) Value {
	i := rt.absIndex(idx)
	if i < 0 || i >= len(rt.stack) {
		return Undefined
	}
	return rt.stack[i]
}

// Top returns the value on top of the stack.
func (rt *Runtime) Top() Value { return rt.Get(-1) }

// Replace overwrites the slot at idx. Out-of-range indices are ignored.
func (rt *Runtime) Replace(idx int, v Value) {
	i := rt.absIndex(idx)
	if i >= 0 && i < len(rt.stack) {
		rt.stack[i] = v
	}
}

// Copy pushes a copy of the value at idx.
func (rt *Runtime) Copy(idx int) { rt.Push(rt.Get(idx)) }

// Remove deletes the slot at idx, shifting the values above it down.
func (rt *Runtime) Remove(idx int) {
	i := rt.absIndex(idx)
	if i < 0 || i >= len(rt.stack) {
		return
	}
	copy(rt.stack[i:], rt.stack[i+1:])
	rt.stack[len(rt.stack)-1] = Undefined
	rt.stack = rt.stack[:len(rt.stack)-1]
}

// insertAt inserts v at absolute position i. Callers check for room.
func (rt *Runtime) insertAt(i int, v Value) {
	rt.stack = append(rt.stack, Undefined)
	copy(rt.stack[i+1:], rt.stack[i:])
	rt.stack[i] = v
}

// truncate drops every slot at or above absolute position i.
func (rt *Runtime) truncate(i int) {
	if i < 0 {
		i = 0
	}
	if i >= len(rt.stack) {
		return
	}
	clear(rt.stack[i:])
	rt.stack = rt.stack[:i]
}

// CheckStack raises when n more values would not fit in the stack. Natives
// that push several values call it first so a failure leaves nothing half
// pushed.
func (rt *Runtime) CheckStack(n int) error {
	if len(rt.stack)+n > rt.config.StackSize {
		return rt.Raise(errors.KindRuntime, "stack overflow")
	}
	return nil
}

// --- Type predicates on stack slots ---

func (rt *Runtime) IsDefined(idx int) bool { return !rt.Get(idx).IsUndefined() }
func (rt *Runtime) IsNull(idx int) bool    { return rt.Get(idx).IsNull() }
func (rt *Runtime) IsBoolean(idx int) bool { return rt.Get(idx).IsBoolean() }
func (rt *Runtime) IsNumber(idx int) bool  { return rt.Get(idx).IsNumber() }
func (rt *Runtime) IsString(idx int) bool  { return rt.Get(idx).IsString() }
func (rt *Runtime) IsObject(idx int) bool  { return rt.Get(idx).IsObject() }
func (rt *Runtime) IsCallable(idx int) bool {
	return rt.Get(idx).IsCallable()
}

// IsError reports whether the slot holds an Error object.
func (rt *Runtime) IsError(idx int) bool { return rt.Get(idx).IsKind(KindError) }
