package main

import "github.com/perfsight/cgviewer/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
