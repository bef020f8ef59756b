package main

import (
	"fmt"
	"os"

	"nsprefix/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes the error and, for coded errors, the suggested fixes.
func printError(w *os.File, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	code := errors.CodeOf(err)
	for _, fix := range errors.GetSuggestedFixes(code) {
		switch {
		case fix.Command != "":
			fmt.Fprintf(w, "  hint: %s\n        $ %s\n", fix.Description, fix.Command)
		case fix.Path != "":
			fmt.Fprintf(w, "  hint: %s (%s)\n", fix.Description, fix.Path)
		}
	}
}
