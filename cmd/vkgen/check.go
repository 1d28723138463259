package main

import (
	"fmt"
	"os"

	"github.com/chazu/vkgen/gen"
	"github.com/chazu/vkgen/manifest"
)

// handleCheckCommand processes the `vkgen check` subcommand. It renders in
// memory and exits 1 when any artifact on disk differs.
func handleCheckCommand(args []string, m *manifest.Manifest, verbose bool) {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: vkgen check")
		os.Exit(1)
	}

	g, err := gen.Load(m, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	failed := false
	outs, err := g.Render()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		failed = true
	}

	stale, err := g.Check(outs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, p := range stale {
		fmt.Printf("stale: %s\n", p)
	}
	if len(stale) > 0 {
		failed = true
	} else if verbose {
		fmt.Printf("%d artifacts up to date in %s\n", len(outs), m.OutputDir())
	}

	if failed {
		os.Exit(1)
	}
}
