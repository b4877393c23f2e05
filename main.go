package main

import "github.com/jsphweid/midi2text/cmd"

func main() {
	cmd.Execute()
}
