package main

import "github.com/daanhaitsma/classtools/internal/cli"

func main() {
	cli.Execute()
}
