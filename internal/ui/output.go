package ui

import (
	"fmt"
	"io"
)

// OK prints a success line.
func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Success.Render(Current().SymDone+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Error.Render(Current().SymDelete+" "+msg))
}
