package main

import "github.com/mcoot/tallyledger/internal/cli"

func main() {
	cli.Execute()
}
