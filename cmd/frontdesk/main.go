package main

import "github.com/BradenHooton/frontdesk/cmd/frontdesk/cmd"

func main() {
	cmd.Execute()
}
