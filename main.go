package main

import "github.com/HaiFongPan/scorepager/cmd"

func main() {
	cmd.Execute()
}
