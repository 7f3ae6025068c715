package main

import "github.com/mxtrix/Happy-Little-Taverley/cmd/taverley/commands"

func main() {
	commands.Execute()
}
