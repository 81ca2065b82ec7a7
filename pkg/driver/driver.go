package driver

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"phonscript/pkg/builtins"
	"phonscript/pkg/config"
	"phonscript/pkg/errors"
	"phonscript/pkg/events"
	"phonscript/pkg/vm"
)

const debugDriver = false

func debugPrintf(format string, args ...interface{}) {
	if debugDriver {
		fmt.Printf(format, args...)
	}
}

// Runtime is a fully initialised phonscript runtime that host threads may
// share. Every entry point takes the runtime lock, so at most one host
// goroutine is inside the interpreter at a time.
type Runtime struct {
	mu      sync.Mutex
	rt      *vm.Runtime
	events  *events.Hub[vm.Value]
	modules map[string]bool
}

// NewLogger returns a text logger writing to w at the level named by cfg.
func NewLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg == nil {
		cfg = config.Default()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
}

// NewRuntime builds a runtime with cfg (the defaults when nil) and installs
// every builtin. Extra options are applied after the configuration.
func NewRuntime(cfg *config.Config, opts ...vm.Option) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rt := vm.NewRuntime(append([]vm.Option{vm.WithConfig(cfg)}, opts...)...)
	hub := events.NewHub[vm.Value](rt.Logger())
	if err := builtins.Install(rt, hub); err != nil {
		return nil, fmt.Errorf("installing builtins: %w", err)
	}
	debugPrintf("// [Driver] runtime ready: stack=%d depth=%d\n", cfg.StackSize, cfg.MaxCallDepth)
	return &Runtime{rt: rt, events: hub, modules: make(map[string]bool)}, nil
}

// Invoke calls the global function at path with args. A dotted path such as
// "Math.max" walks fields from the global object and calls the last one with
// its owner as receiver. On failure the error is always a *errors.Record and
// the runtime is reset, ready for the next call.
func (r *Runtime) Invoke(path string, args ...vm.Value) (vm.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	debugPrintf("// [Driver] invoke %s with %d args\n", path, len(args))
	result, err := r.invoke(path, args)
	if err != nil {
		return vm.Undefined, r.fail(err)
	}
	return result, nil
}

func (r *Runtime) invoke(path string, args []vm.Value) (vm.Value, error) {
	fn, this, err := r.resolve(path)
	if err != nil {
		return vm.Undefined, err
	}
	if !fn.IsCallable() {
		return vm.Undefined, r.rt.RaiseTypeError("%s is not callable", path)
	}
	return r.rt.CallValue(fn, this, args...)
}

// resolve looks up a dotted path and returns the value with its owner.
func (r *Runtime) resolve(path string) (vm.Value, vm.Value, error) {
	parts := strings.Split(path, ".")
	v, ok := r.rt.LookupGlobal(parts[0])
	if !ok || parts[0] == "" {
		return vm.Undefined, vm.Undefined, r.rt.Raise(errors.KindReference, "%s is not defined", parts[0])
	}
	owner := vm.Undefined
	for _, name := range parts[1:] {
		next, err := r.rt.GetValue(v, name)
		if err != nil {
			return vm.Undefined, vm.Undefined, err
		}
		owner, v = v, next
	}
	return v, owner, nil
}

// Publish delivers an event to every handler subscribed to topic, in
// subscription order, and returns the number of handlers called. The first
// failing handler stops delivery.
func (r *Runtime) Publish(topic string, args ...vm.Value) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.events.Publish(topic, args...)
	if err != nil {
		return n, r.fail(err)
	}
	return n, nil
}

// Unsubscribe removes a subscription made by the host or by a script and
// releases the handler it pinned. It reports whether id was live.
func (r *Runtime) Unsubscribe(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events.Unsubscribe(id)
}

// Do runs fn with exclusive access to the underlying runtime. Errors are
// converted like those of Invoke.
func (r *Runtime) Do(fn func(rt *vm.Runtime) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := fn(r.rt); err != nil {
		return r.fail(err)
	}
	return nil
}

// fail propagates err to the host boundary and resets the runtime.
func (r *Runtime) fail(err error) *errors.Record {
	rec := r.rt.Propagate(err)
	r.rt.Reset()
	debugPrintf("// [Driver] propagated %s\n", rec.Error())
	return rec
}

// Global describes one entry of the global namespace.
type Global struct {
	Name       string
	Type       string
	Enumerable bool
	Fields     []string
}

// Globals lists the global namespace sorted by name. Fields holds the own
// field names of object globals, hidden ones included.
func (r *Runtime) Globals() []Global {
	r.mu.Lock()
	defer r.mu.Unlock()

	global := r.rt.Global()
	var out []Global
	for _, name := range global.AllOwnKeys() {
		f, _ := global.GetOwnField(name)
		g := Global{
			Name:       name,
			Type:       f.Value().TypeName(),
			Enumerable: f.Flags().Enumerable(),
		}
		if f.Value().IsObject() {
			g.Fields = f.Value().AsObject().AllOwnKeys()
			sort.Strings(g.Fields)
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Events returns the hub shared by the Events global and the host. Removing
// a script subscription touches the runtime heap, so hosts sharing the
// runtime between goroutines should prefer Unsubscribe.
func (r *Runtime) Events() *events.Hub[vm.Value] { return r.events }
