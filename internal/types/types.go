// Package types defines the core data model shared across the QA and
// analysis pipelines.
package types

import (
	"time"

	"github.com/araddon/dateparse"
)

// Message is a single member message in canonical form. Source records
// arrive with different field names (user_id, user_name, message) and
// are renamed into this shape exactly once, at fetch time. Messages are
// never mutated afterwards.
//
// Timestamp is kept as the raw string from the source. A missing or
// malformed timestamp is a valid state, not an error: each consumer
// decides how to treat it.
type Message struct {
	ID         string `json:"id"`
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
}

// ParsedTime parses the message timestamp. ok is false when the
// timestamp is absent or unparseable.
func (m Message) ParsedTime() (time.Time, bool) {
	if m.Timestamp == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(m.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// BurstRecord flags one dense message window for a user. It is a
// one-shot flag: at most one record is emitted per user even when
// several qualifying windows exist. Start and End carry the original
// timestamp strings from the flagged window's boundary messages.
type BurstRecord struct {
	User  string `json:"user"`
	Count int    `json:"count"`
	Start string `json:"start"`
	End   string `json:"end"`
}
