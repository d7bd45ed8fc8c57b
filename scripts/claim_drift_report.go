// Command claim_drift_report compares the claims two model versions
// produced over the same database and reports where they disagree.
//
// Usage:
//
//	go run scripts/claim_drift_report.go -db ~/.dossier/dossier.db -base rules-v1 -next rules-v2
//
// Output is JSON on stdout: per-predicate totals for both versions,
// the subjects whose top label changed, and the claims only one
// version produced. Intended for eyeballing a dictionary or priors
// change before promoting a new model version.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	_ "modernc.org/sqlite"
)

type claimRow struct {
	Subject     string  `json:"subject"`
	Predicate   string  `json:"predicate"`
	Object      string  `json:"object"`
	Probability float64 `json:"probability"`
}

type drift struct {
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	BaseObject string  `json:"base_object"`
	NextObject string  `json:"next_object"`
	BaseProb   float64 `json:"base_probability"`
	NextProb   float64 `json:"next_probability"`
}

type report struct {
	BaseVersion string         `json:"base_version"`
	NextVersion string         `json:"next_version"`
	BaseCounts  map[string]int `json:"base_claims_by_predicate"`
	NextCounts  map[string]int `json:"next_claims_by_predicate"`
	Changed     []drift        `json:"changed"`
	OnlyBase    []claimRow     `json:"only_in_base"`
	OnlyNext    []claimRow     `json:"only_in_next"`
	Agreement   float64        `json:"agreement_rate"`
}

func main() {
	dbPath := flag.String("db", "", "path to the dossier database")
	base := flag.String("base", "", "baseline model version")
	next := flag.String("next", "", "candidate model version")
	flag.Parse()

	if *dbPath == "" || *base == "" || *next == "" {
		fmt.Fprintln(os.Stderr, "usage: claim_drift_report -db <path> -base <version> -next <version>")
		os.Exit(2)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		fail("opening database: %v", err)
	}
	defer db.Close()

	baseClaims, err := loadClaims(db, *base)
	if err != nil {
		fail("loading %s claims: %v", *base, err)
	}
	nextClaims, err := loadClaims(db, *next)
	if err != nil {
		fail("loading %s claims: %v", *next, err)
	}
	if len(baseClaims) == 0 {
		fail("no claims for model version %s", *base)
	}

	rep := report{
		BaseVersion: *base,
		NextVersion: *next,
		BaseCounts:  map[string]int{},
		NextCounts:  map[string]int{},
	}

	type key struct{ subject, predicate string }
	baseTop := map[key]claimRow{}
	for _, c := range baseClaims {
		rep.BaseCounts[c.Predicate]++
		k := key{c.Subject, c.Predicate}
		// role and intent have one claim per subject; affiliations and
		// org types can have several, keep the strongest for comparison.
		if prev, ok := baseTop[k]; !ok || c.Probability > prev.Probability {
			baseTop[k] = c
		}
	}
	nextTop := map[key]claimRow{}
	for _, c := range nextClaims {
		rep.NextCounts[c.Predicate]++
		k := key{c.Subject, c.Predicate}
		if prev, ok := nextTop[k]; !ok || c.Probability > prev.Probability {
			nextTop[k] = c
		}
	}

	agreed := 0
	compared := 0
	for k, b := range baseTop {
		n, ok := nextTop[k]
		if !ok {
			rep.OnlyBase = append(rep.OnlyBase, b)
			continue
		}
		compared++
		if b.Object == n.Object {
			agreed++
			continue
		}
		rep.Changed = append(rep.Changed, drift{
			Subject:    k.subject,
			Predicate:  k.predicate,
			BaseObject: b.Object,
			NextObject: n.Object,
			BaseProb:   b.Probability,
			NextProb:   n.Probability,
		})
	}
	for k, n := range nextTop {
		if _, ok := baseTop[k]; !ok {
			rep.OnlyNext = append(rep.OnlyNext, n)
		}
	}
	if compared > 0 {
		rep.Agreement = float64(agreed) / float64(compared)
	}

	sort.Slice(rep.Changed, func(i, j int) bool {
		if rep.Changed[i].Subject != rep.Changed[j].Subject {
			return rep.Changed[i].Subject < rep.Changed[j].Subject
		}
		return rep.Changed[i].Predicate < rep.Changed[j].Predicate
	})
	sortRows(rep.OnlyBase)
	sortRows(rep.OnlyNext)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		fail("encoding report: %v", err)
	}
}

func loadClaims(db *sql.DB, version string) ([]claimRow, error) {
	rows, err := db.Query(
		`SELECT subject, predicate, object_value, probability FROM claims WHERE model_version = ?`,
		version,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []claimRow
	for rows.Next() {
		var c claimRow
		if err := rows.Scan(&c.Subject, &c.Predicate, &c.Object, &c.Probability); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func sortRows(rows []claimRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Subject != rows[j].Subject {
			return rows[i].Subject < rows[j].Subject
		}
		return rows[i].Predicate < rows[j].Predicate
	})
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
