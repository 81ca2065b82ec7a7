package builtins

import (
	"fmt"

	"phonscript/pkg/events"
	"phonscript/pkg/vm"
)

// BuiltinInitializer is implemented by each builtin module
type BuiltinInitializer interface {
	// Name returns the module name (e.g., "Array", "String", "Math")
	Name() string

	// Priority returns initialization order (lower = earlier)
	Priority() int

	// InitRuntime installs the module's constructors, methods and globals.
	InitRuntime(ctx *RuntimeContext) error
}

// RuntimeContext provides everything needed for runtime initialization
type RuntimeContext struct {
	// The runtime being initialised
	Runtime *vm.Runtime

	// Hub dispatches host and script events; shared with the host.
	Events *events.Hub[vm.Value]
}

// DefineGlobal installs a global value. Builtin names are hidden from
// enumeration of the global object and may only be defined once.
func (ctx *RuntimeContext) DefineGlobal(name string, value vm.Value) error {
	global := ctx.Runtime.Global()
	if global.HasOwn(name) {
		return fmt.Errorf("global %q already defined", name)
	}
	global.DefineOwn(name, value, vm.DontEnum)
	return nil
}

// Priority constants for initialization order
const (
	PriorityObject   = 0 // Object must be first (base prototype)
	PriorityFunction = 1 // Function second (inherits from Object)
	PriorityError    = 2 // Error kinds are needed by every raise
	PriorityArray    = 3
	PriorityString   = 10 // String primitives
	PriorityNumber   = 11 // Number primitives
	PriorityBoolean  = 12 // Boolean primitives
	PriorityRegex    = 13 // Regex constructor
	PriorityMath     = 100
	PriorityGlobals  = 101
	PriorityEvents   = 102
	PriorityJSON     = 103
)
