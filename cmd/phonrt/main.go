// Command phonrt hosts a phonscript runtime from the command line. It lists
// the global namespace and invokes global natives, rendering structured
// errors the way an embedding host would.
//
//	phonrt -inspect
//	phonrt -call Math.max 3 9 4
//	phonrt -config runtime.yaml -call String.from_char_code 104 105
//	phonrt -call Math.abs -- -3
//
// Arguments after the path are read as literals; "--" ends flag parsing so
// that negative numbers are not taken for flags.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"phonscript/pkg/config"
	"phonscript/pkg/driver"
	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

var (
	accentColor = lipgloss.Color("#3B82F6")
	errorColor  = lipgloss.Color("#EF4444")
	mutedColor  = lipgloss.Color("#6B7280")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	frameStyle  = lipgloss.NewStyle().Foreground(mutedColor).PaddingLeft(2)
)

func main() {
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, color))
}

// printer renders output with or without terminal styling.
type printer struct {
	out, err io.Writer
	color    bool
}

func (p printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func run(args []string, stdout, stderr io.Writer, color bool) int {
	p := printer{out: stdout, err: stderr, color: color}
	fs := flag.NewFlagSet("phonrt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Runtime configuration file (YAML)")
	inspect := fs.Bool("inspect", false, "List the global namespace and exit")
	hidden := fs.Bool("all", false, "With -inspect, also list the fields of every global")
	call := fs.String("call", "", "Invoke the global function at this dotted path with the remaining arguments")
	if err := fs.Parse(args); err != nil {
		return 64 // command line usage error
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, p.style(errorStyle, err.Error()))
			return 78 // configuration error
		}
		cfg = loaded
	}

	rt, err := driver.NewRuntime(cfg, vm.WithLogger(driver.NewLogger(stderr, cfg)))
	if err != nil {
		fmt.Fprintln(stderr, p.style(errorStyle, err.Error()))
		return 70 // internal software error
	}

	switch {
	case *inspect:
		p.inspect(rt.Globals(), *hidden)
		return 0
	case *call != "":
		return p.invoke(rt, *call, fs.Args())
	}
	fmt.Fprintln(stderr, "Usage: phonrt [-config file] -inspect | -call path [args...]")
	return 64
}

func (p printer) inspect(globals []driver.Global, fields bool) {
	fmt.Fprintln(p.out, p.style(headerStyle, "Globals"))
	for _, g := range globals {
		line := fmt.Sprintf("  %s %s", p.style(nameStyle, g.Name), p.style(mutedStyle, g.Type))
		if g.Enumerable {
			line += p.style(mutedStyle, " (host)")
		}
		fmt.Fprintln(p.out, line)
		if fields && len(g.Fields) > 0 {
			fmt.Fprintln(p.out, p.style(frameStyle, strings.Join(g.Fields, " ")))
		}
	}
}

func (p printer) invoke(rt *driver.Runtime, path string, raw []string) int {
	args := make([]vm.Value, len(raw))
	for i, s := range raw {
		args[i] = parseArg(s)
	}
	result, err := rt.Invoke(path, args...)
	if err != nil {
		p.report(err)
		return 1
	}
	err = rt.Do(func(r *vm.Runtime) error {
		s, err := r.ToString(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(p.out, s)
		return nil
	})
	if err != nil {
		p.report(err)
		return 1
	}
	return 0
}

// report renders a host-boundary error: the kind and message on one line,
// then one line per trace frame, innermost first.
func (p printer) report(err error) {
	if !p.color {
		errors.Display(p.err, err)
		return
	}
	rec := errors.AsRecord(err)
	fmt.Fprintf(p.err, "%s %s\n", errorStyle.Render("["+rec.Kind()+"]"), rec.Message())
	for _, f := range rec.Frames() {
		fmt.Fprintln(p.err, frameStyle.Render(f.String()))
	}
}

// parseArg reads a command line argument as a script literal. Anything that
// is not a number, boolean, null or undefined is passed as a string.
func parseArg(s string) vm.Value {
	switch s {
	case "true":
		return vm.True
	case "false":
		return vm.False
	case "null":
		return vm.Null
	case "undefined":
		return vm.Undefined
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return vm.NumberValue(f)
	}
	return vm.NewString(s)
}
