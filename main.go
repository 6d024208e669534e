package main

import "github.com/kiesman99/slidestitch/cmd"

func main() {
	cmd.Execute()
}
