package builtins

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"phonscript/pkg/events"
	"phonscript/pkg/vm"
)

// GetStandardInitializers returns all built-in initializers sorted by priority
func GetStandardInitializers() []BuiltinInitializer {
	initializers := []BuiltinInitializer{
		&ObjectInitializer{},
		&FunctionInitializer{},
		&ErrorInitializer{},
		&ArrayInitializer{},
		&StringInitializer{},
		&NumberInitializer{},
		&BooleanInitializer{},
		&RegexInitializer{},
		&MathInitializer{},
		&GlobalsInitializer{},
		&EventsInitializer{},
		&JSONInitializer{},
	}

	// Sort by priority (lower numbers first)
	sort.SliceStable(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})

	return initializers
}

// ErrInstalled is returned by Install for a runtime that already carries
// the builtins.
var ErrInstalled = errors.New("builtins already installed")

// Install runs every standard initializer against rt. A nil hub gets a
// private one. A runtime whose global object already has Object is left
// untouched.
func Install(rt *vm.Runtime, hub *events.Hub[vm.Value]) error {
	if rt.Global().HasOwn("Object") {
		return ErrInstalled
	}
	if hub == nil {
		hub = events.NewHub[vm.Value](rt.Logger())
	}
	ctx := &RuntimeContext{Runtime: rt, Events: hub}
	for _, init := range GetStandardInitializers() {
		if err := init.InitRuntime(ctx); err != nil {
			return fmt.Errorf("initializing %s: %w", init.Name(), err)
		}
		rt.Logger().Debug("builtin installed", slog.String("module", init.Name()))
	}
	return nil
}
