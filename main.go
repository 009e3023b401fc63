package main

import "extractor-installer/internal/cli"

func main() {
	cli.Execute()
}
