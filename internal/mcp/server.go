// Package mcp provides a Model Context Protocol server for Dossier.
//
// It exposes the claims store (per-subject profiles, claim listings,
// abstentions, stats) as read-only MCP tools over stdio, so downstream
// agents (enrichment passes, chat assistants) can pull member profiles
// as context.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/dossier/internal/store"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Store   *store.SQLiteStore
	Version string
}

// dbMu serializes MCP tool calls that touch the database. The mcp-go
// library dispatches handlers concurrently via goroutines; SQLite
// supports only one writer and stale reads are possible during
// writes, so a global mutex keeps tool calls ordered.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all Dossier tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"Dossier",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	registerProfileTool(s, cfg.Store)
	registerClaimsTool(s, cfg.Store)
	registerAbstentionsTool(s, cfg.Store)
	registerStatsTool(s, cfg.Store)
	registerStatsResource(s, cfg.Store)

	return s
}

// ServeStdio runs the server over stdio until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// --- Tools ---

type profileClaim struct {
	Predicate   string           `json:"predicate"`
	Object      string           `json:"object"`
	Probability float64          `json:"probability"`
	Status      string           `json:"status"`
	Model       string           `json:"model_version"`
	Evidence    []evidenceOutput `json:"evidence,omitempty"`
}

type evidenceOutput struct {
	Type   string  `json:"type"`
	Ref    string  `json:"ref"`
	Weight float64 `json:"weight"`
}

func registerProfileTool(s *server.MCPServer, st *store.SQLiteStore) {
	tool := mcp.NewTool("dossier_profile",
		mcp.WithDescription("Fetch the full claim profile for one subject (role, intent, affiliations, org types) with attached evidence."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Claim subject, e.g. \"@alice\" or \"tg:12345\""),
		),
		mcp.WithBoolean("evidence",
			mcp.Description("Include evidence rows (default: true)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		subject, err := req.RequireString("subject")
		if err != nil {
			return mcp.NewToolResultError("subject is required"), nil
		}

		withEvidence := req.GetBool("evidence", true)

		claims, err := st.ListClaims(ctx, store.ClaimFilter{Subject: subject, Limit: 200})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing claims: %v", err)), nil
		}

		out := make([]profileClaim, 0, len(claims))
		for _, c := range claims {
			pc := profileClaim{
				Predicate:   c.Predicate,
				Object:      c.ObjectValue,
				Probability: c.Probability,
				Status:      c.Status,
				Model:       c.ModelVersion,
			}
			if withEvidence {
				rows, err := st.ClaimEvidence(ctx, c.ID)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("loading evidence: %v", err)), nil
				}
				for _, e := range rows {
					pc.Evidence = append(pc.Evidence, evidenceOutput{Type: e.EvidenceType, Ref: e.EvidenceRef, Weight: e.Weight})
				}
			}
			out = append(out, pc)
		}

		return jsonResult(map[string]interface{}{"subject": subject, "claims": out})
	})
}

func registerClaimsTool(s *server.MCPServer, st *store.SQLiteStore) {
	tool := mcp.NewTool("dossier_claims",
		mcp.WithDescription("List claims filtered by predicate, status, or model version."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("predicate",
			mcp.Description("Filter by predicate: role, intent, affiliated_with, org_type"),
			mcp.Enum("role", "intent", "affiliated_with", "org_type"),
		),
		mcp.WithString("status",
			mcp.Description("Filter by status: supported or tentative"),
			mcp.Enum("supported", "tentative"),
		),
		mcp.WithString("model",
			mcp.Description("Filter by model version"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 50)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		filter := store.ClaimFilter{Limit: 50}
		if v, err := req.RequireString("predicate"); err == nil && v != "" {
			filter.Predicate = v
		}
		if v, err := req.RequireString("status"); err == nil && v != "" {
			filter.Status = v
		}
		if v, err := req.RequireString("model"); err == nil && v != "" {
			filter.ModelVersion = v
		}
		if v, err := req.RequireFloat("limit"); err == nil && int(v) > 0 {
			filter.Limit = int(v)
		}

		claims, err := st.ListClaims(ctx, filter)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing claims: %v", err)), nil
		}

		type row struct {
			Subject     string  `json:"subject"`
			Predicate   string  `json:"predicate"`
			Object      string  `json:"object"`
			Probability float64 `json:"probability"`
			Status      string  `json:"status"`
		}
		out := make([]row, 0, len(claims))
		for _, c := range claims {
			out = append(out, row{c.Subject, c.Predicate, c.ObjectValue, c.Probability, c.Status})
		}
		return jsonResult(map[string]interface{}{"claims": out, "count": len(out)})
	})
}

func registerAbstentionsTool(s *server.MCPServer, st *store.SQLiteStore) {
	tool := mcp.NewTool("dossier_abstentions",
		mcp.WithDescription("List abstention records: dimensions where evidence was too weak to claim anything."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("subject",
			mcp.Description("Filter by subject"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 50)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		subject := ""
		if v, err := req.RequireString("subject"); err == nil {
			subject = v
		}
		limit := 50
		if v, err := req.RequireFloat("limit"); err == nil && int(v) > 0 {
			limit = int(v)
		}

		abstentions, err := st.ListAbstentions(ctx, subject, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing abstentions: %v", err)), nil
		}

		type row struct {
			Subject   string `json:"subject"`
			Predicate string `json:"predicate"`
			Reason    string `json:"reason_code"`
			Details   string `json:"details"`
		}
		out := make([]row, 0, len(abstentions))
		for _, a := range abstentions {
			out = append(out, row{a.Subject, a.Predicate, a.ReasonCode, a.Details})
		}
		return jsonResult(map[string]interface{}{"abstentions": out, "count": len(out)})
	})
}

func registerStatsTool(s *server.MCPServer, st *store.SQLiteStore) {
	tool := mcp.NewTool("dossier_stats",
		mcp.WithDescription("Aggregate statistics: claims by predicate and status, abstention reasons, model versions, last run."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		stats, err := st.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("computing stats: %v", err)), nil
		}
		return jsonResult(stats)
	})
}

// --- Resources ---

func registerStatsResource(s *server.MCPServer, st *store.SQLiteStore) {
	resource := mcp.NewResource(
		"dossier://stats",
		"Dossier statistics",
		mcp.WithResourceDescription("Aggregate claim/abstention statistics"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		stats, err := st.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("computing stats: %w", err)
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "dossier://stats",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
