package main

import "github.com/brensch/nssfetch/cmd"

func main() {
	cmd.Execute()
}
