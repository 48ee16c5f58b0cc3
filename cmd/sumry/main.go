package main

import (
	"os"

	"sumry/cmd/sumry/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
