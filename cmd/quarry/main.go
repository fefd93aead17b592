package main

import "github.com/quarrylabs/quarry-cli/internal/cli"

func main() {
	cli.Execute()
}
