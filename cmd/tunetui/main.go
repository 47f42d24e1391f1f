package main

import (
	"os"

	"github.com/strumlab/tunetui/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
