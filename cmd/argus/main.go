package main

import (
	"os"

	"github.com/arguslabs/argus/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
