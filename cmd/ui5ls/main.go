package main

import (
	"os"

	"github.com/albertocavalcante/ui5ls/internal/cmd/ui5ls"
)

func main() {
	os.Exit(ui5ls.Run(os.Args[1:]))
}
