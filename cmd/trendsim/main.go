package main

import (
	"os"

	"github.com/rkondo/trendsim/cmd/trendsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
