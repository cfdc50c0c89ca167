package main

import "github.com/notargets/ibforce/cmd"

func main() {
	cmd.Execute()
}
