package main

import "github.com/forPelevin/mediashop/internal/cli"

func main() {
	cli.Main()
}
