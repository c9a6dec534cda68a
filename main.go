package main

import "github.com/wardenhq/warden/cli"

func main() {
	cli.Execute()
}
