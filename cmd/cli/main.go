package main

import "readhub/cmd/cli/command"

func main() {
	command.Execute()
}
