package main

import "github.com/pfrederiksen/cricket-results/internal/cli"

func main() {
	cli.Execute()
}
