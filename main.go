package main

import (
	"os"

	"github.com/spigell/interview-evaluator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
