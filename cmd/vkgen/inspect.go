package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/tliron/commonlog"

	"github.com/chazu/vkgen/catalog"
	"github.com/chazu/vkgen/classify"
	"github.com/chazu/vkgen/decl"
	"github.com/chazu/vkgen/manifest"
	"github.com/chazu/vkgen/metadata"
	"github.com/chazu/vkgen/order"
)

// handleClassifyCommand processes the `vkgen classify TYPE...` subcommand.
// Types are classified against the catalog built from the metadata.
func handleClassifyCommand(args []string, m *manifest.Manifest, verbose bool) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: vkgen classify TYPE...")
		os.Exit(1)
	}

	md, err := metadata.Load(m.MetadataPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cat := catalog.Build(md.Enums, md.Structs, m.CatalogConfig())
	cls := classify.New(cat, commonlog.GetLogger("vkgen.classify"))

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if verbose {
		fmt.Fprintln(tw, "TYPE\tCATEGORY\tCTYPE\tPOINTERS")
	}
	for _, t := range args {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t, cls.Classify(t), cls.CType(t, ""), decl.PointerDepth(t))
	}
	tw.Flush()
}

// handleOrderCommand processes the `vkgen order` subcommand.
func handleOrderCommand(args []string, m *manifest.Manifest, verbose bool) {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: vkgen order")
		os.Exit(1)
	}

	md, err := metadata.Load(m.MetadataPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ordered, err := order.ByDependency(md.AllStructs())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, s := range ordered {
		if verbose && s.Version > 0 {
			fmt.Printf("%s (version %d)\n", catalog.CanonicalStructName(s.Name), s.Version)
			continue
		}
		fmt.Println(catalog.CanonicalStructName(s.Name))
	}
}
