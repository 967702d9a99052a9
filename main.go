// main.go - ls8vm CLI entry point

package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <input_file> [-d]\n", os.Args[0])
}

func main() {
	args := os.Args[1:]
	if len(args) < 1 || len(args) > 2 {
		usage()
		os.Exit(1)
	}

	path := args[0]
	debug := false
	if len(args) == 2 {
		if args[1] != "-d" {
			usage()
			os.Exit(1)
		}
		debug = true
	}

	m := NewMachine()
	if err := LoadProgram(m, path); err != nil {
		fmt.Fprintf(os.Stderr, "ls8vm: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	cu := NewControlUnit(m, debug)
	g.Go(func() error {
		return cu.Run(cancel)
	})

	kb := stdinKeyboard(m)
	g.Go(func() error {
		return kb.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "ls8vm: %v\n", err)
		os.Exit(1)
	}
}
