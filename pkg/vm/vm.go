package vm

import (
	"io"
	"log/slog"

	"phonscript/pkg/config"
	"phonscript/pkg/errors"
)

// ExecState tracks the error channel of a runtime:
// Normal -> Raised -> Unwinding -> Normal (caught) or Propagated (to host).
type ExecState uint8

const (
	StateNormal ExecState = iota
	StateRaised
	StateUnwinding
	StatePropagated
)

func (s ExecState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateRaised:
		return "raised"
	case StateUnwinding:
		return "unwinding"
	case StatePropagated:
		return "propagated"
	default:
		return "unknown"
	}
}

// Runtime is one execution context: a value stack, a global object, the
// prototype registry and the active call frames. A Runtime is not safe for
// concurrent use; hosts that enter it from several goroutines must serialise
// entry themselves. Separate Runtimes share nothing.
type Runtime struct {
	config *config.Config
	logger *slog.Logger

	// Value stack. len(stack) is the top; bot is the index of the current
	// frame's `this` slot, so argument n lives at bot+n.
	stack    []Value
	bot      int
	overflow bool // a Push was dropped for lack of room

	global   *Object
	registry *Registry

	// Active call frames, outermost first.
	frames []errors.Frame

	state   ExecState
	current *Exception // exception being raised or unwound

	// Values pinned by host code.
	heap *Heap
}

// Option configures a Runtime at construction.
type Option func(*Runtime)

// WithConfig sets the limits used by the runtime.
func WithConfig(cfg *config.Config) Option {
	return func(rt *Runtime) {
		if cfg != nil {
			rt.config = cfg
		}
	}
}

// WithLogger sets the structured logger. The default logger discards.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// NewRuntime creates a runtime with an empty global object and a registry
// of bare meta-objects. Builtins are installed separately.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		config: config.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		heap:   NewHeap(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.stack = make([]Value, 0, rt.config.StackSize)
	rt.frames = make([]errors.Frame, 0, rt.config.MaxCallDepth)
	rt.registry = newRegistry()
	rt.global = NewObject(KindPlain, rt.registry.Meta(KindPlain))
	return rt
}

func (rt *Runtime) Config() *config.Config { return rt.config }
func (rt *Runtime) Logger() *slog.Logger   { return rt.logger }
func (rt *Runtime) Global() *Object        { return rt.global }
func (rt *Runtime) Registry() *Registry    { return rt.registry }
func (rt *Runtime) State() ExecState       { return rt.state }

// Meta is shorthand for rt.Registry().Meta(kind).
func (rt *Runtime) Meta(kind ObjectKind) *Object { return rt.registry.Meta(kind) }

// CallDepth returns the number of active call frames.
func (rt *Runtime) CallDepth() int { return len(rt.frames) }

// Reset drops every stack slot and frame and returns to the normal state.
// Hosts call it after an error has been propagated to them.
func (rt *Runtime) Reset() {
	clear(rt.stack)
	rt.stack = rt.stack[:0]
	rt.bot = 0
	rt.overflow = false
	rt.frames = rt.frames[:0]
	rt.state = StateNormal
	rt.current = nil
}

// --- Allocation helpers ---

func (rt *Runtime) NewPlainObject() *Object {
	return NewObject(KindPlain, rt.registry.Meta(KindPlain))
}

func (rt *Runtime) NewBooleanObject(b bool) *Object {
	o := NewObject(KindBoolean, rt.registry.Meta(KindBoolean))
	o.boolean = b
	return o
}

func (rt *Runtime) NewNumberObject(f float64) *Object {
	o := NewObject(KindNumber, rt.registry.Meta(KindNumber))
	o.number = f
	return o
}

func (rt *Runtime) NewStringObject(s string) *Object {
	o := NewObject(KindString, rt.registry.Meta(KindString))
	o.str = s
	return o
}

func (rt *Runtime) NewArray(elems ...Value) *Object {
	o := NewObject(KindArray, rt.registry.Meta(KindArray))
	o.elements = elems
	return o
}

// NewRegex compiles pattern and wraps it in a Regex object.
func (rt *Runtime) NewRegex(pattern, flags string) (*Object, error) {
	data, err := CompileRegex(pattern, flags, rt.config.RegexTimeout)
	if err != nil {
		return nil, rt.Raise(errors.KindSyntax, "invalid regular expression: %s", err)
	}
	o := NewObject(KindRegex, rt.registry.Meta(KindRegex))
	o.regex = data
	return o, nil
}
