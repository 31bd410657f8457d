package main

import "github.com/Alijeyrad/biomatrix/cmd"

func main() {
	cmd.Execute()
}
