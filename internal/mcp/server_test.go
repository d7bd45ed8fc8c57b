package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/dossier/internal/store"
)

// helper: create a test store with one profiled subject
func setupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewStore(store.StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()

	claim := &store.Claim{
		Subject:      "@alice",
		Predicate:    "role",
		ObjectValue:  "founder_exec",
		Probability:  0.81,
		Status:       "supported",
		ModelVersion: "v1",
	}
	evidence := []store.Evidence{
		{EvidenceType: "bio", EvidenceRef: "bio:founder_title", Weight: 2.2},
		{EvidenceType: "message", EvidenceRef: "msg:bd_action:count=3", Weight: 1.9},
	}
	if _, err := s.WriteClaim(ctx, claim, evidence); err != nil {
		t.Fatalf("writing test claim: %v", err)
	}

	abst := &store.Abstention{
		Subject:      "@bob",
		Predicate:    "role",
		ReasonCode:   "insufficient_evidence",
		Details:      "role:community GATED",
		ModelVersion: "v1",
	}
	if _, err := s.WriteAbstention(ctx, abst); err != nil {
		t.Fatalf("writing test abstention: %v", err)
	}

	return s
}

func TestNewServer(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s, Version: "test"})
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
}

// callTool is a helper that invokes an MCP tool by building a CallToolRequest.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) *mcplib.CallToolResult {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}

	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	callResult := &mcplib.CallToolResult{
		IsError: resp.Result.IsError,
	}
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			callResult.Content = append(callResult.Content, mcplib.NewTextContent(c.Text))
		}
	}

	return callResult
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func getTextContent(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content found")
	return ""
}

func profileClaims(t *testing.T, result *mcplib.CallToolResult) []profileClaim {
	t.Helper()
	var out struct {
		Subject string         `json:"subject"`
		Claims  []profileClaim `json:"claims"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &out); err != nil {
		t.Fatalf("parsing profile claims: %v", err)
	}
	return out.Claims
}

func TestProfileTool(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s, Version: "test"})

	result := callTool(t, srv, "dossier_profile", map[string]interface{}{
		"subject": "@alice",
	})
	claims := profileClaims(t, result)

	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	if claims[0].Object != "founder_exec" {
		t.Errorf("object = %q, want founder_exec", claims[0].Object)
	}
	if len(claims[0].Evidence) != 2 {
		t.Errorf("expected 2 evidence rows by default, got %d", len(claims[0].Evidence))
	}
}

func TestProfileToolEvidenceToggle(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s, Version: "test"})

	// A JSON boolean false must suppress evidence rows.
	result := callTool(t, srv, "dossier_profile", map[string]interface{}{
		"subject":  "@alice",
		"evidence": false,
	})
	claims := profileClaims(t, result)
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	if len(claims[0].Evidence) != 0 {
		t.Errorf("evidence=false should omit evidence rows, got %d", len(claims[0].Evidence))
	}

	// And an explicit true keeps them.
	result = callTool(t, srv, "dossier_profile", map[string]interface{}{
		"subject":  "@alice",
		"evidence": true,
	})
	claims = profileClaims(t, result)
	if len(claims[0].Evidence) != 2 {
		t.Errorf("evidence=true should include evidence rows, got %d", len(claims[0].Evidence))
	}
}

func TestProfileToolMissingSubject(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s, Version: "test"})

	result := callTool(t, srv, "dossier_profile", map[string]interface{}{})
	if !result.IsError {
		t.Fatal("expected error result for missing subject")
	}
}

func TestAbstentionsTool(t *testing.T) {
	s := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: s, Version: "test"})

	result := callTool(t, srv, "dossier_abstentions", map[string]interface{}{
		"subject": "@bob",
	})
	text := getTextContent(t, result)

	var out struct {
		Abstentions []map[string]interface{} `json:"abstentions"`
		Count       int                      `json:"count"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("parsing abstentions: %v", err)
	}
	if out.Count != 1 || len(out.Abstentions) != 1 {
		t.Fatalf("expected 1 abstention, got count=%d len=%d", out.Count, len(out.Abstentions))
	}
	if out.Abstentions[0]["reason_code"] != "insufficient_evidence" {
		t.Errorf("reason_code = %v, want insufficient_evidence", out.Abstentions[0]["reason_code"])
	}
}
