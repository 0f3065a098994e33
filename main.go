package main

import "texnorm/cmd"

func main() {
	cmd.Execute()
}
