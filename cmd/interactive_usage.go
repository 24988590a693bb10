// interactive_usage.go - Hilfe-Texte der interaktiven Session
package cmd

import (
	"fmt"
	"io"
)

// usage zeigt die allgemeine Hilfe an
func usage(w io.Writer) {
	fmt.Fprintln(w, "Available Commands:")
	fmt.Fprintln(w, "  /head <n>       Show head n (1-based)")
	fmt.Fprintln(w, "  /heads          Pick a head from a list")
	fmt.Fprintln(w, "  /tokens         List the tokens of the current input")
	fmt.Fprintln(w, "  /status         Show backend status and the last error")
	fmt.Fprintln(w, "  /bye            Exit")
	fmt.Fprintln(w, "  /?, /help       Help for a command")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Any other line is processed as new input.")
	fmt.Fprintln(w, "")
}
