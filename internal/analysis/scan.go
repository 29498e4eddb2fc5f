package analysis

import (
	"strings"
	"time"

	"github.com/aurorahq/memberqa/internal/types"
)

// shortTextThreshold is the trimmed length below which a message
// counts as suspiciously short.
const shortTextThreshold = 5

// Stats summarizes the scanned message set.
type Stats struct {
	TotalMessages int     `json:"total_messages"`
	UniqueUsers   int     `json:"unique_users"`
	AvgTextLength float64 `json:"avg_text_length"`
}

// Report is the output of one integrity scan. Each field is an
// independent membership check over the full message set; there is no
// windowing, ranking, or scoring here.
type Report struct {
	Stats Stats

	MissingMemberName []types.Message
	MissingText       []types.Message
	MissingTimestamp  []types.Message

	// Duplicates maps whitespace-trimmed non-empty text to the ids of
	// every message carrying it. Only entries with two or more ids are
	// kept.
	Duplicates map[string][]string

	ShortMessages []types.Message

	// ImpossibleTimestamps holds messages whose timestamp parses to a
	// year beyond currentYear+2. Timestamps that fail to parse are
	// skipped here, not flagged: the missing-timestamp check above
	// tests presence only, and the two checks stay asymmetric on
	// purpose.
	ImpossibleTimestamps []types.Message
}

// Scan runs every integrity check over msgs.
func Scan(msgs []types.Message) *Report {
	r := &Report{Duplicates: make(map[string][]string)}

	users := make(map[string]struct{})
	totalLen := 0
	textToIDs := make(map[string][]string)
	futureCutoff := time.Now().Year() + 2

	for _, m := range msgs {
		if m.MemberName != "" {
			users[m.MemberName] = struct{}{}
		} else {
			r.MissingMemberName = append(r.MissingMemberName, m)
		}

		totalLen += len(m.Text)
		if m.Text == "" {
			r.MissingText = append(r.MissingText, m)
		}
		if m.Timestamp == "" {
			r.MissingTimestamp = append(r.MissingTimestamp, m)
		}

		trimmed := strings.TrimSpace(m.Text)
		if trimmed != "" {
			textToIDs[trimmed] = append(textToIDs[trimmed], m.ID)
		}
		if len(trimmed) < shortTextThreshold {
			r.ShortMessages = append(r.ShortMessages, m)
		}

		if at, ok := m.ParsedTime(); ok && at.Year() > futureCutoff {
			r.ImpossibleTimestamps = append(r.ImpossibleTimestamps, m)
		}
	}

	for text, ids := range textToIDs {
		if len(ids) > 1 {
			r.Duplicates[text] = ids
		}
	}

	r.Stats.TotalMessages = len(msgs)
	r.Stats.UniqueUsers = len(users)
	if len(msgs) > 0 {
		r.Stats.AvgTextLength = float64(totalLen) / float64(len(msgs))
	}
	return r
}
