package main

import "github.com/julienpequegnot/autoblogger/cmd"

func main() {
	cmd.Execute()
}
