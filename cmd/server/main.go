package main

import "github.com/nirvachan/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
