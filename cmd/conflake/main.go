package main

import (
	"os"

	"github.com/igfraga/go-conflake/cmd/conflake/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
