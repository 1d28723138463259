package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/vkgen/gen"
	"github.com/chazu/vkgen/manifest"
)

// handleGenerateCommand processes the `vkgen generate` subcommand.
// Usage:
//
//	vkgen generate                    # all artifacts into [output] dir
//	vkgen generate -o ./out           # custom output root
//	vkgen generate --only header,ids  # a subset
func handleGenerateCommand(args []string, m *manifest.Manifest, verbose bool) {
	// Parse flags
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: -o requires a directory path")
				os.Exit(1)
			}
			dir, err := filepath.Abs(args[i+1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			m.Output.Dir = dir
			i++
		case "--only":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --only requires a comma separated artifact list")
				os.Exit(1)
			}
			m.Output.Only = splitList(args[i+1])
			i++
		default:
			fmt.Fprintf(os.Stderr, "Error: unexpected argument %q\n", args[i])
			os.Exit(1)
		}
	}

	g, err := gen.Load(m, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	added, err := g.UpdateIDs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error updating IDs: %v\n", err)
		os.Exit(1)
	}
	if verbose && len(added) > 0 {
		fmt.Printf("Added %d IDs to %s\n", len(added), m.RegistryPath())
	}

	failed := false
	outs, err := g.Render()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		failed = true
	}

	res, err := g.Write(outs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		failed = true
	}
	for _, p := range res.HandEdited {
		fmt.Fprintf(os.Stderr, "Warning: overwrote hand-edited %s\n", p)
	}
	if verbose {
		fmt.Printf("Wrote %d files, %d unchanged, into %s\n", len(res.Written), len(res.Unchanged), m.OutputDir())
	}

	if failed {
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
