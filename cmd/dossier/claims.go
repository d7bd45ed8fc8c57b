package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hurttlocker/dossier/internal/config"
	"github.com/hurttlocker/dossier/internal/store"
)

// openStore resolves configuration and opens the database, honoring
// the same --db/--config precedence as score.
func openStore(dbPath, configPath string) (*store.SQLiteStore, error) {
	resolved, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath: configPath,
		CLIDBPath:  dbPath,
	})
	if err != nil {
		return nil, err
	}
	s, err := store.NewStore(store.StoreConfig{DBPath: resolved.DBPath.Value})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}

func runClaims(args []string) error {
	filter := store.ClaimFilter{Limit: 50}
	var dbPath, configPath string
	asJSON := false

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--subject" && i+1 < len(args):
			i++
			filter.Subject = args[i]
		case strings.HasPrefix(args[i], "--subject="):
			filter.Subject = strings.TrimPrefix(args[i], "--subject=")
		case args[i] == "--predicate" && i+1 < len(args):
			i++
			filter.Predicate = args[i]
		case strings.HasPrefix(args[i], "--predicate="):
			filter.Predicate = strings.TrimPrefix(args[i], "--predicate=")
		case args[i] == "--status" && i+1 < len(args):
			i++
			filter.Status = args[i]
		case strings.HasPrefix(args[i], "--status="):
			filter.Status = strings.TrimPrefix(args[i], "--status=")
		case args[i] == "--model" && i+1 < len(args):
			i++
			filter.ModelVersion = args[i]
		case strings.HasPrefix(args[i], "--model="):
			filter.ModelVersion = strings.TrimPrefix(args[i], "--model=")
		case args[i] == "--limit" && i+1 < len(args):
			i++
			fmt.Sscanf(args[i], "%d", &filter.Limit)
		case strings.HasPrefix(args[i], "--limit="):
			fmt.Sscanf(strings.TrimPrefix(args[i], "--limit="), "%d", &filter.Limit)
		case args[i] == "--json":
			asJSON = true
		case args[i] == "--db" && i+1 < len(args):
			i++
			dbPath = args[i]
		case strings.HasPrefix(args[i], "--db="):
			dbPath = strings.TrimPrefix(args[i], "--db=")
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
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	s, err := openStore(dbPath, configPath)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	claims, err := s.ListClaims(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing claims: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(claims)
	}

	if len(claims) == 0 {
		fmt.Println("No claims found.")
		return nil
	}
	for _, c := range claims {
		fmt.Printf("%-24s %-16s %-24s %.2f  %s  [%s]\n",
			c.Subject, c.Predicate, c.ObjectValue, c.Probability, c.Status, c.ModelVersion)
	}
	fmt.Printf("\n%d claims\n", len(claims))
	return nil
}

func runAbstentions(args []string) error {
	var subject, dbPath, configPath string
	limit := 50
	asJSON := false

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--subject" && i+1 < len(args):
			i++
			subject = args[i]
		case strings.HasPrefix(args[i], "--subject="):
			subject = strings.TrimPrefix(args[i], "--subject=")
		case args[i] == "--limit" && i+1 < len(args):
			i++
			fmt.Sscanf(args[i], "%d", &limit)
		case strings.HasPrefix(args[i], "--limit="):
			fmt.Sscanf(strings.TrimPrefix(args[i], "--limit="), "%d", &limit)
		case args[i] == "--json":
			asJSON = true
		case args[i] == "--db" && i+1 < len(args):
			i++
			dbPath = args[i]
		case strings.HasPrefix(args[i], "--db="):
			dbPath = strings.TrimPrefix(args[i], "--db=")
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
	if limit <= 0 {
		limit = 50
	}

	s, err := openStore(dbPath, configPath)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	abstentions, err := s.ListAbstentions(ctx, subject, limit)
	if err != nil {
		return fmt.Errorf("listing abstentions: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(abstentions)
	}

	if len(abstentions) == 0 {
		fmt.Println("No abstentions found.")
		return nil
	}
	for _, a := range abstentions {
		fmt.Printf("%-24s %-8s %-22s %s\n", a.Subject, a.Predicate, a.ReasonCode, a.Details)
	}
	fmt.Printf("\n%d abstentions\n", len(abstentions))
	return nil
}

func runStats(args []string) error {
	var dbPath, configPath string
	asJSON := false

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--json":
			asJSON = true
		case args[i] == "--db" && i+1 < len(args):
			i++
			dbPath = args[i]
		case strings.HasPrefix(args[i], "--db="):
			dbPath = strings.TrimPrefix(args[i], "--db=")
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

	s, err := openStore(dbPath, configPath)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Claims:      %d (%d subjects)\n", stats.TotalClaims, stats.TotalSubjects)
	fmt.Printf("Evidence:    %d\n", stats.TotalEvidence)
	fmt.Printf("Abstentions: %d\n", stats.TotalAbstentions)
	if len(stats.ClaimsByPredicate) > 0 {
		fmt.Println("\nBy predicate:")
		for _, p := range []string{"role", "intent", "affiliated_with", "org_type"} {
			if n, ok := stats.ClaimsByPredicate[p]; ok {
				fmt.Printf("  %-16s %d\n", p, n)
			}
		}
	}
	if len(stats.ClaimsByStatus) > 0 {
		fmt.Println("\nBy status:")
		for _, st := range []string{"supported", "tentative"} {
			if n, ok := stats.ClaimsByStatus[st]; ok {
				fmt.Printf("  %-16s %d\n", st, n)
			}
		}
	}
	if len(stats.AbstentionsByCode) > 0 {
		fmt.Println("\nAbstention reasons:")
		for code, n := range stats.AbstentionsByCode {
			fmt.Printf("  %-22s %d\n", code, n)
		}
	}
	if len(stats.ModelVersions) > 0 {
		fmt.Printf("\nModel versions: %s\n", strings.Join(stats.ModelVersions, ", "))
	}
	fmt.Printf("Storage: %.1f KB\n", float64(stats.StorageBytes)/1024)
	if stats.LastRun != nil {
		fmt.Printf("Last run: %s (%d users, %d claims) at %s\n",
			stats.LastRun.ID, stats.LastRun.UsersScored, stats.LastRun.ClaimsWritten,
			stats.LastRun.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
