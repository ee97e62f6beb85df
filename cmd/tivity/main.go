package main

import "github.com/goliatone/go-tivity/cmd/tivity/cmd"

func main() {
	cmd.Execute()
}
