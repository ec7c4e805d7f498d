package main

import (
	"os"

	"github.com/albertocavalcante/ui5ls/internal/cmd/ui5check"
)

func main() {
	os.Exit(ui5check.Run(os.Args[1:]))
}
