package main

import (
	"os"

	"github.com/anupamd/revise/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
