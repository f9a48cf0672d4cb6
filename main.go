package main

import (
	"os"

	"github.com/clawboard/clawboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
