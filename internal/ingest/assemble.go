package ingest

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hurttlocker/dossier/internal/score"
)

// mentionRE counts @handle mentions inside message text.
var mentionRE = regexp.MustCompile(`@\w{3,}`)

// domainTermRE is the domain-share vocabulary: the fraction of a
// member's messages touching these terms is one of the aggregate
// features the engine can threshold on.
var domainTermRE = regexp.MustCompile(`(?i)\b(?:token|listing|tge|airdrop|mainnet|testnet|defi|dex|cex|liquidity|staking|audit|partnership|kol|market\s*making)\b`)

type memberMessages struct {
	date string
	text string
}

type member struct {
	userID      int64
	username    string
	displayName string
	bio         string
	contexts    map[string]bool
	messages    []memberMessages
	replies     int
	mentions    int
	totalLen    int
}

// Assembler merges one or more group exports into per-member scoring
// inputs. Members are keyed by user id across groups, which is what
// makes distinct-context counting work.
type Assembler struct {
	sampleCap int
	members   map[int64]*member
	order     []int64
}

// NewAssembler creates an assembler; sampleCap bounds the message
// sample handed to the engine (most recent messages win).
func NewAssembler(sampleCap int) *Assembler {
	if sampleCap <= 0 {
		sampleCap = 200
	}
	return &Assembler{
		sampleCap: sampleCap,
		members:   map[int64]*member{},
	}
}

// AddExport folds one group export into the assembler. Bots and
// deleted accounts are skipped.
func (a *Assembler) AddExport(e *Export) {
	ctx := ContextTag(e.Name)

	for _, p := range e.Participants {
		if p.Bot || p.Deleted {
			continue
		}
		m := a.member(p.UserID)
		m.contexts[ctx] = true
		if p.Username != "" {
			m.username = p.Username
		}
		if name := participantDisplayName(p); name != "" {
			m.displayName = name
		}
		if p.About != "" {
			m.bio = p.About
		}
	}

	for _, msg := range e.Messages {
		id := int64(msg.FromID)
		if id == 0 || strings.TrimSpace(msg.Text) == "" {
			continue
		}
		m := a.member(id)
		m.contexts[ctx] = true
		if m.displayName == "" && msg.From != "" {
			m.displayName = msg.From
		}
		m.messages = append(m.messages, memberMessages{date: msg.Date, text: msg.Text})
		if msg.ReplyTo != nil {
			m.replies++
		}
		m.mentions += len(mentionRE.FindAllString(msg.Text, -1))
		m.totalLen += len(msg.Text)
	}
}

func (a *Assembler) member(id int64) *member {
	if m, ok := a.members[id]; ok {
		return m
	}
	m := &member{userID: id, contexts: map[string]bool{}}
	a.members[id] = m
	a.order = append(a.order, id)
	return m
}

// Inputs returns one scoring input per member, in first-seen order.
func (a *Assembler) Inputs() []score.UserInput {
	out := make([]score.UserInput, 0, len(a.order))
	for _, id := range a.order {
		m := a.members[id]

		sort.SliceStable(m.messages, func(i, j int) bool {
			return m.messages[i].date < m.messages[j].date
		})
		sample := m.messages
		if len(sample) > a.sampleCap {
			sample = sample[len(sample)-a.sampleCap:]
		}
		texts := make([]string, len(sample))
		domainHits := 0
		for i, msg := range sample {
			texts[i] = msg.text
			if domainTermRE.MatchString(msg.text) {
				domainHits++
			}
		}

		contexts := make([]string, 0, len(m.contexts))
		for c := range m.contexts {
			contexts = append(contexts, c)
		}
		sort.Strings(contexts)

		input := score.UserInput{
			UserID:           subjectID(m),
			DisplayName:      m.displayName,
			Bio:              m.bio,
			GroupContexts:    contexts,
			Messages:         texts,
			MessageCount:     len(m.messages),
			ReplyCount:       m.replies,
			MentionCount:     m.mentions,
			DistinctContexts: len(m.contexts),
		}
		if len(m.messages) > 0 {
			input.AvgMessageLen = float64(m.totalLen) / float64(len(m.messages))
		}
		if len(sample) > 0 {
			input.DomainShare = float64(domainHits) / float64(len(sample))
		}
		out = append(out, input)
	}
	return out
}

// subjectID builds the claim subject for a member: the @username when
// known, otherwise the numeric Telegram id.
func subjectID(m *member) string {
	if m.username != "" {
		return "@" + m.username
	}
	return "tg:" + strconv.FormatInt(m.userID, 10)
}

func participantDisplayName(p Participant) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name != "" {
		return name
	}
	return p.Username
}
