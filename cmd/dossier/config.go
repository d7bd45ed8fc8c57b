package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hurttlocker/dossier/internal/config"
)

func runConfig(args []string) error {
	var configPath string
	asJSON := false

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--json":
			asJSON = true
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		case strings.HasPrefix(args[i], "--config="):
			configPath = strings.TrimPrefix(args[i], "--config=")
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			return fmt.Errorf("unexpected argument: %s", args[i])
		}
	}

	resolved, err := config.ResolveConfig(config.ResolveOptions{ConfigPath: configPath})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resolved)
	}

	fmt.Printf("Config file: %s\n\n", resolved.ConfigPath)
	printValue("db_path", resolved.DBPath)
	printValue("model_version", resolved.ModelVersion)
	printValue("min_non_membership_evidence", resolved.MinEvidence)
	printValue("min_claim_confidence", resolved.MinConfidence)
	printValue("display_threshold", resolved.DisplayThreshold)
	printValue("sample.messages", resolved.MessageSample)
	printValue("sample.affiliation_scan", resolved.AffiliationScan)
	return nil
}

func printValue(name string, v config.ResolvedValue) {
	if v.Value == "" {
		fmt.Printf("  %-28s (default)\n", name)
		return
	}
	from := string(v.Source)
	if v.From != "" {
		from = fmt.Sprintf("%s: %s", v.Source, v.From)
	}
	fmt.Printf("  %-28s %s  (%s)\n", name, v.Value, from)
}
