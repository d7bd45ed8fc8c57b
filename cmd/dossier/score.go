package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hurttlocker/dossier/internal/config"
	"github.com/hurttlocker/dossier/internal/ingest"
	"github.com/hurttlocker/dossier/internal/profile"
	"github.com/hurttlocker/dossier/internal/score"
	"github.com/hurttlocker/dossier/internal/store"
	"github.com/hurttlocker/dossier/internal/taxonomy"
)

func runScore(args []string) error {
	var paths []string
	var dbPath, configPath, model string
	dryRun := false
	asJSON := false

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--dry-run" || args[i] == "-n":
			dryRun = true
		case args[i] == "--json":
			asJSON = true
		case args[i] == "--db" && i+1 < len(args):
			i++
			dbPath = args[i]
		case strings.HasPrefix(args[i], "--db="):
			dbPath = strings.TrimPrefix(args[i], "--db=")
		case args[i] == "--model" && i+1 < len(args):
			i++
			model = args[i]
		case strings.HasPrefix(args[i], "--model="):
			model = strings.TrimPrefix(args[i], "--model=")
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		case strings.HasPrefix(args[i], "--config="):
			configPath = strings.TrimPrefix(args[i], "--config=")
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			paths = append(paths, args[i])
		}
	}

	if len(paths) == 0 {
		return fmt.Errorf("usage: dossier score <export.json>... [--db <path>] [--model <version>] [--dry-run] [--json]")
	}

	resolved, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath: configPath,
		CLIDBPath:  dbPath,
		CLIModel:   model,
	})
	if err != nil {
		return err
	}
	engineCfg, err := resolved.EngineConfig()
	if err != nil {
		return err
	}
	displayThreshold, err := resolved.EffectiveDisplayThreshold()
	if err != nil {
		return err
	}

	asm := ingest.NewAssembler(engineCfg.MessageSampleCap)
	for _, path := range paths {
		export, err := ingest.LoadExport(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		asm.AddExport(export)
		if !asJSON {
			fmt.Printf("Loaded %s (%d participants, %d messages)\n", path, len(export.Participants), len(export.Messages))
		}
	}
	inputs := asm.Inputs()
	if len(inputs) == 0 {
		return fmt.Errorf("no scoreable members found (bots and deleted accounts are skipped)")
	}

	var st *store.SQLiteStore
	if !dryRun {
		st, err = store.NewStore(store.StoreConfig{DBPath: resolved.DBPath.Value})
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()
	} else if !asJSON {
		fmt.Println("Dry run mode — no changes will be written")
	}

	runner := profile.NewRunner(st, engineCfg)
	ctx := context.Background()

	summary, results, err := runner.Run(ctx, inputs, profile.Options{
		DryRun:           dryRun,
		DisplayThreshold: displayThreshold,
	})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Println()
	for _, res := range results {
		printResult(res)
	}

	fmt.Printf("Scored %d members: %d claims, %d abstentions\n",
		summary.UsersScored, summary.ClaimsWritten, summary.Abstentions)
	if summary.RunID != "" {
		fmt.Printf("Run %s (model %s)\n", summary.RunID, engineCfg.ModelVersion)
	}
	return nil
}

func printResult(res score.Result) {
	fmt.Printf("%s\n", res.UserID)

	if res.RoleClaim != nil {
		fmt.Printf("  role:   %s (%.2f)\n", res.RoleClaim.Label, res.RoleClaim.Probability)
	} else {
		fmt.Printf("  role:   %s\n", taxonomy.RoleUnknown)
	}
	if res.IntentClaim != nil {
		fmt.Printf("  intent: %s (%.2f)\n", res.IntentClaim.Label, res.IntentClaim.Probability)
	} else {
		fmt.Printf("  intent: %s\n", taxonomy.IntentUnknown)
	}
	for _, a := range res.Affiliations {
		fmt.Printf("  org:    %s (from %s)\n", a.Name, a.Source)
	}
	for _, o := range res.OrgTypes {
		fmt.Printf("  type:   %s (from %s)\n", o.Type, o.Source)
	}
	for _, note := range res.GatingNotes {
		fmt.Printf("  %s\n", note)
	}
	fmt.Println()
}
