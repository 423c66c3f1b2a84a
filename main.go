package main

import "github.com/khalidaziz/dukkan/cmd"

func main() {
	cmd.Start()
}
