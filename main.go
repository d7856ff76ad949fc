package main

import (
	"os"

	"github.com/agiledecrypt/agiledecrypt/internal/exitcodes"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		tlog.Fatal.Println(err)
		os.Exit(exitcodes.FromError(err))
	}
}
