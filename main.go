package main

import "github.com/schoolroster/roster/cmd"

func main() {
	cmd.Execute()
}
