package main

import (
	"fmt"
	"os"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "score":
		if err := runScore(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "claims":
		if err := runClaims(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "abstentions":
		if err := runAbstentions(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "stats":
		if err := runStats(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "config":
		if err := runConfig(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := runMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("dossier %s\n", version)
	case "--version", "-v":
		fmt.Printf("dossier %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`dossier %s — Evidence-gated member profiling for group chats

Usage:
  dossier <command> [arguments]

Commands:
  score <export.json>...   Score members from chat export files
  claims                   List persisted claims
  abstentions              List abstention records
  stats                    Show storage statistics and health
  config                   Show resolved configuration with provenance
  mcp                      Run the MCP server (stdio)
  version                  Print version

Score Flags:
  -n, --dry-run            Score without writing anything
      --json               Emit full results as JSON
      --db <path>          Database path
      --model <version>    Model version tag for written claims
      --config <path>      Config file (default ~/.dossier/config.yaml)

Flags:
  -h, --help               Show this help message
  -v, --version            Print version

Documentation:
  https://github.com/hurttlocker/dossier
`, version)
}
