package main

import "github.com/agentic-research/xbrlgraph/cmd"

func main() {
	cmd.Execute()
}
