package main

import "github.com/ankimate/ankimate/cmd/ankimate/cli"

func main() {
	cli.Execute()
}
