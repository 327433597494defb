package main

import (
	"os"

	"github.com/qpath/qpath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
