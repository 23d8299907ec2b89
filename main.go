package main

import "github.com/relaymesh/dtnsim/cmd"

func main() {
	cmd.Execute()
}
