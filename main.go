package main

import "github.com/wme7/FVENS/cmd"

func main() {
	cmd.Execute()
}
