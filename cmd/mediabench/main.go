package main

import "github.com/mediabench/mediabench/internal/cli"

func main() {
	cli.Execute()
}
