// Package analysis runs the data-quality passes over a fetched message
// set: burst detection, integrity scanning, and the report model the
// CLI prints and archives.
package analysis

import (
	"sort"
	"time"

	"github.com/aurorahq/memberqa/internal/types"
)

// DefaultBurstThreshold is the number of consecutive messages that
// make up a burst window.
const DefaultBurstThreshold = 5

// DefaultBurstWindow is the time span a burst window must fit inside.
const DefaultBurstWindow = 30 * time.Second

// DetectBursts flags users who sent thresholdCount consecutive
// messages within window. Messages are grouped by member name (empty
// names share an "Unknown" bucket); messages without a parseable
// timestamp are dropped before sorting. The first qualifying window
// per user produces one BurstRecord and ends the scan for that user:
// this is a one-shot flag, not an enumeration of every burst.
func DetectBursts(msgs []types.Message, thresholdCount int, window time.Duration) []types.BurstRecord {
	if thresholdCount <= 0 {
		thresholdCount = DefaultBurstThreshold
	}
	if window <= 0 {
		window = DefaultBurstWindow
	}

	type stamped struct {
		msg types.Message
		at  time.Time
	}
	byUser := make(map[string][]stamped)
	var order []string
	for _, m := range msgs {
		user := m.MemberName
		if user == "" {
			user = "Unknown"
		}
		at, ok := m.ParsedTime()
		if !ok {
			continue
		}
		if _, seen := byUser[user]; !seen {
			order = append(order, user)
		}
		byUser[user] = append(byUser[user], stamped{msg: m, at: at})
	}

	var bursts []types.BurstRecord
	for _, user := range order {
		msgs := byUser[user]
		if len(msgs) < thresholdCount {
			continue
		}
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].at.Before(msgs[j].at)
		})
		for i := 0; i+thresholdCount <= len(msgs); i++ {
			first := msgs[i]
			last := msgs[i+thresholdCount-1]
			if last.at.Sub(first.at) <= window {
				bursts = append(bursts, types.BurstRecord{
					User:  user,
					Count: thresholdCount,
					Start: first.msg.Timestamp,
					End:   last.msg.Timestamp,
				})
				break // flag each user at most once
			}
		}
	}
	return bursts
}
