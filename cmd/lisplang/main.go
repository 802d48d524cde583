package main

import (
	"os"

	"github.com/cwbudde/go-lisplang/cmd/lisplang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
