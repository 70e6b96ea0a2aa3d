package main

import (
	"os"

	vecpeekcmder "github.com/papercomputeco/vecpeek/cmd/vecpeek"
)

func main() {
	cmd := vecpeekcmder.NewVecpeekCmd()
	if err := cmd.Execute(); err != nil {
		vecpeekcmder.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
