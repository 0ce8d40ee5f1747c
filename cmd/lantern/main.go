package main

import "github.com/lanternhq/lantern/internal/cli"

func main() {
	cli.Execute()
}
