package main

import "pinstrap/cmd/pinstrap/cmd"

func main() {
	cmd.Execute()
}
