package main

import "focuslist/cmd/focuslist-cli/cmd"

func main() {
	cmd.Execute()
}
