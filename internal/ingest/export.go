// Package ingest loads Telegram group-export JSON files and assembles
// the per-member scoring inputs.
//
// The export format is what the telethon collector writes: one JSON
// object per group with a participants array and a messages array.
// Ingest is the boundary between raw exports and the pure engine; it
// computes the aggregate counters (message count, reply count,
// mentions, domain share, distinct contexts) so the engine never has
// to see raw exports.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Export mirrors the collector's output object.
type Export struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	ID           int64         `json:"id"`
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`
}

// Participant is one group member as exported.
type Participant struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	About       string `json:"about"`
	Bot         bool   `json:"bot"`
	Deleted     bool   `json:"deleted"`
}

// Message is one exported group message. FromID arrives either as a
// bare number or as a "user12345" string depending on collector
// version, so it gets custom decoding.
type Message struct {
	ID         int64      `json:"id"`
	Date       string     `json:"date"`
	From       string     `json:"from"`
	FromID     FlexibleID `json:"from_id"`
	Text       string     `json:"text"`
	ReplyTo    *int64     `json:"reply_to_message_id"`
	ReplyCount int        `json:"reply_count"`
}

// FlexibleID decodes an id that may be a JSON number or a
// "user12345"-style string.
type FlexibleID int64

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("from_id is neither number nor string: %s", data)
	}
	// "user12345" / "channel12345" prefixes from Desktop-format exports.
	digits := idDigitsRE.FindString(s)
	if digits == "" {
		*f = 0
		return nil
	}
	var parsed int64
	fmt.Sscanf(digits, "%d", &parsed)
	*f = FlexibleID(parsed)
	return nil
}

// LoadExport reads and parses one export file.
func LoadExport(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export %s: %w", path, err)
	}
	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parsing export %s: %w", path, err)
	}
	if e.Name == "" {
		return nil, fmt.Errorf("export %s has no group name", path)
	}
	return &e, nil
}

var idDigitsRE = regexp.MustCompile(`\d+`)

var contextTagRE = regexp.MustCompile(`[^a-z0-9]+`)

// ContextTag normalizes a group title into the context tag the priors
// table is keyed by ("BD in Web3" → "bd_in_web3").
func ContextTag(groupName string) string {
	tag := strings.ToLower(strings.TrimSpace(groupName))
	tag = contextTagRE.ReplaceAllString(tag, "_")
	return strings.Trim(tag, "_")
}
