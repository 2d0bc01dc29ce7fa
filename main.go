package main

import "github.com/atikulmunna/deskwatch/internal/cmd"

func main() {
	cmd.Execute()
}
