// Package cmdutil holds helpers shared by the command packages.
package cmdutil

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const skipLibraryAnnotation = "citegraph/skip-library"

// DisableLibrary marks cmd as runnable without an opened library, for
// commands that create or manage libraries.
func DisableLibrary(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[skipLibraryAnnotation] = "true"
}

// SkipsLibrary reports whether cmd or one of its parents was marked with
// DisableLibrary.
func SkipsLibrary(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipLibraryAnnotation] == "true" {
			return true
		}
	}
	return false
}

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TerminalWidth returns the width of w when it is a terminal, or zero.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// IsInteractive reports whether r is a terminal a prompt can read from.
func IsInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
