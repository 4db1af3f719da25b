package main

import (
	"github.com/rpsarena/rps-arena-go/internal/cli"
)

func main() {
	cli.Execute()
}
