package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"lspwiki/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage renders err for the terminal. Analyzer errors show their
// message without the code prefix.
func errorMessage(err error) string {
	var ae *errors.AnalyzerError
	if stderrors.As(err, &ae) && ae.Code == errors.PathNotFound {
		return ae.Message
	}
	return err.Error()
}
