package main

import (
	"os"

	"github.com/dvloznov/zenmoney-bridge/cmd/zenctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
