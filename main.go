package main

import "github.com/maddran/portfolio/cmd"

func main() {
	cmd.Execute()
}
