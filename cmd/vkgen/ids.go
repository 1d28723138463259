package main

import (
	"fmt"
	"os"

	"github.com/chazu/vkgen/gen"
	"github.com/chazu/vkgen/manifest"
	"github.com/chazu/vkgen/metadata"
)

// handleIDsCommand processes the `vkgen ids` subcommand. Only the metadata
// is loaded, so a struct cycle does not block registry updates.
func handleIDsCommand(args []string, m *manifest.Manifest, verbose bool) {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: vkgen ids")
		os.Exit(1)
	}

	md, err := metadata.Load(m.MetadataPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	added, err := gen.UpdateIDs(m, md.AllFunctions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, id := range added {
		fmt.Println(id)
	}
	if verbose {
		fmt.Printf("%d new IDs in %s\n", len(added), m.RegistryPath())
	}
}
