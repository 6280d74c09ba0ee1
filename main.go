package main

import "imagestudio/internal/cli"

func main() {
	cli.Execute()
}
