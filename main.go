package main

import "surge/cmd"

func main() {
	cmd.Execute()
}
