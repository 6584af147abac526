package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		var sf *scenarioFailedError
		if errors.As(err, &sf) {
			// Report already printed; just set the exit code.
			os.Exit(1)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
