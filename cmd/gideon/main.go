package main

import "github.com/mcoot/gideon/internal/cli"

func main() {
	cli.Execute()
}
