package main

import "github.com/ikarus-cloud/furnish/internal/cli"

func main() {
	cli.Execute()
}
