package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/imkarma/isc/internal/cli"
	"github.com/imkarma/isc/internal/criteria"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, criteria.ErrNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
