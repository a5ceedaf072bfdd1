package main

import "github.com/emrgen/content/cmd"

func main() {
	cmd.Execute()
}
