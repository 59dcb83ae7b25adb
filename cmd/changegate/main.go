package main

import (
	"os"

	"github.com/solatis/changegate/cmd/changegate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
