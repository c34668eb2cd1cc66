package main

import "github.com/Mohsinsiddi/suiforge/cmd"

func main() {
	cmd.Execute()
}
