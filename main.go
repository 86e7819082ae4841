package main

import "github.com/TFMV/refugeeflow/cmd"

func main() {
	cmd.Execute()
}
