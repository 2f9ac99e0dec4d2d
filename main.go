package main

import "github.com/simasch/pr-finder/cmd"

func main() {
	cmd.Execute()
}
