package main

import "github.com/pastries/pastries/pkg/cmd"

func main() {
	cmd.Execute()
}
