package cli

import (
	"fmt"
	"io"
	"os"
)

// outWriter is the destination for user-facing output.
// Tests swap it for a buffer.
var outWriter io.Writer = os.Stdout

func out(format string, args ...any) {
	fmt.Fprintf(outWriter, format, args...)
}

func outln(args ...any) {
	fmt.Fprintln(outWriter, args...)
}
