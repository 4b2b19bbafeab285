package main

import (
	"os"

	"github.com/salesking/salesking-go/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
