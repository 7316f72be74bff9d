package main

import (
	"os"

	"github.com/kylemclaren/clockbar/internal/cli"
	"github.com/kylemclaren/clockbar/internal/version"
)

func main() {
	if err := cli.Execute(version.Short()); err != nil {
		os.Exit(1)
	}
}
