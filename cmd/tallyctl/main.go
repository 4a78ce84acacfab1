package main

import "github.com/MrJamesThe3rd/tally/cmd/tallyctl/cmd"

func main() {
	cmd.Execute()
}
