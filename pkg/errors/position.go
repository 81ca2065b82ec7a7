package errors

import "fmt"

// Frame describes one call frame of a stack trace: the function that was
// executing and where. Native functions report File "native" and Line 0.
type Frame struct {
	Function string
	File     string
	Line     int // 1-based, 0 when unknown
}

// Location renders the frame position as "file:line", or just "file" when
// the line is unknown.
func (f Frame) Location() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return f.File
}

func (f Frame) String() string {
	if f.Function == "" {
		return "at " + f.Location()
	}
	return fmt.Sprintf("at %s (%s)", f.Function, f.Location())
}
