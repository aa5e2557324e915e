package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/carson-networks/allowance-server/cmd/ledgerctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, cmd.ErrDrift) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
