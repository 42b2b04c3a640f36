package main

import "github.com/LeJamon/goBountySplit/internal/cli"

func main() {
	cli.Execute()
}
