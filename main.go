package main

import "grimm.is/rampart/cmd"

func main() {
	cmd.Execute()
}
