package main

import (
	"os"

	"github.com/fedlogin/fedlogin/cmd/fedlogin/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
