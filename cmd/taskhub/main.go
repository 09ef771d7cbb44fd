// Package main is the entry point for the taskhub CLI.
package main

import (
	"os"

	"github.com/taskhub/taskhub/internal/cli"
	"github.com/taskhub/taskhub/internal/logging"
)

func main() {
	logging.Setup()
	os.Exit(cli.Run(os.Args[1:]))
}
