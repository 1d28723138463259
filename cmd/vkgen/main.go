// vkgen CLI - generates the GITS Vulkan C++ sources from API metadata
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/vkgen/manifest"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	dir := flag.String("C", ".", "Directory to start the vkgen.toml search from")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vkgen [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Generates the Vulkan recorder, interceptor and logging sources.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  generate [-o dir] [--only a,b]  Update IDs, render and write artifacts\n")
		fmt.Fprintf(os.Stderr, "  check                           Report artifacts that are out of date\n")
		fmt.Fprintf(os.Stderr, "  ids                             Update the ID registry only\n")
		fmt.Fprintf(os.Stderr, "  classify TYPE...                Show how types are classified\n")
		fmt.Fprintf(os.Stderr, "  order                           Print structs in declaration order\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vkgen generate                  # everything, as configured in vkgen.toml\n")
		fmt.Fprintf(os.Stderr, "  vkgen generate --only header    # just vulkanHeader.h\n")
		fmt.Fprintf(os.Stderr, "  vkgen -C codegen check          # fail if the checked-in output is stale\n")
		fmt.Fprintf(os.Stderr, "  vkgen classify 'const VkDeviceCreateInfo*'\n")
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	m, err := manifest.FindAndLoad(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}
	if m == nil {
		if m, err = manifest.Default(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("No %s found, using defaults in %s\n", manifest.FileName, m.Dir)
		}
	}

	verbosity := m.Log.Verbosity
	if *verbose {
		verbosity++
	}
	commonlog.Configure(verbosity, m.LogFile())

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "generate":
		handleGenerateCommand(rest, m, *verbose)
	case "check":
		handleCheckCommand(rest, m, *verbose)
	case "ids":
		handleIDsCommand(rest, m, *verbose)
	case "classify":
		handleClassifyCommand(rest, m, *verbose)
	case "order":
		handleOrderCommand(rest, m, *verbose)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
}
