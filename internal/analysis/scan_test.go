package analysis

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurorahq/memberqa/internal/types"
)

func TestScan_MissingFields(t *testing.T) {
	msgs := []types.Message{
		{ID: "1", MemberName: "Alice", Text: "hello there", Timestamp: "2024-03-15T19:00:00Z"},
		{ID: "2", Text: "no name here", Timestamp: "2024-03-15T19:00:00Z"},
		{ID: "3", MemberName: "Bob", Timestamp: "2024-03-15T19:00:00Z"},
		{ID: "4", MemberName: "Carol", Text: "no timestamp"},
	}
	r := Scan(msgs)

	require.Len(t, r.MissingMemberName, 1)
	assert.Equal(t, "2", r.MissingMemberName[0].ID)
	require.Len(t, r.MissingText, 1)
	assert.Equal(t, "3", r.MissingText[0].ID)
	require.Len(t, r.MissingTimestamp, 1)
	assert.Equal(t, "4", r.MissingTimestamp[0].ID)
}

func TestScan_DuplicateGroups(t *testing.T) {
	msgs := []types.Message{
		{ID: "1", MemberName: "Alice", Text: "book me a car"},
		{ID: "2", MemberName: "Bob", Text: "  book me a car  "},
		{ID: "3", MemberName: "Carol", Text: "something unique"},
		{ID: "4", MemberName: "Dan", Text: ""},
		{ID: "5", MemberName: "Eve", Text: "   "},
	}
	r := Scan(msgs)

	require.Len(t, r.Duplicates, 1)
	ids, ok := r.Duplicates["book me a car"]
	require.True(t, ok, "group key is the trimmed text")
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestScan_DuplicateGroupInvariants(t *testing.T) {
	var msgs []types.Message
	for i := 0; i < 30; i++ {
		msgs = append(msgs, types.Message{
			ID:   fmt.Sprintf("%d", i),
			Text: fmt.Sprintf("text %d", i%7),
		})
	}
	r := Scan(msgs)

	byID := make(map[string]types.Message)
	for _, m := range msgs {
		byID[m.ID] = m
	}
	for key, ids := range r.Duplicates {
		assert.GreaterOrEqual(t, len(ids), 2, "groups hold only real duplicates")
		for _, id := range ids {
			assert.Equal(t, key, strings.TrimSpace(byID[id].Text))
		}
	}
}

func TestScan_ShortMessages(t *testing.T) {
	msgs := []types.Message{
		{ID: "1", Text: "hey"},
		{ID: "2", Text: "    ok    "},
		{ID: "3", Text: ""},
		{ID: "4", Text: "long enough message"},
		{ID: "5", Text: "12345"},
	}
	r := Scan(msgs)

	var ids []string
	for _, m := range r.ShortMessages {
		ids = append(ids, m.ID)
	}
	// Exactly 5 trimmed characters is not short.
	assert.ElementsMatch(t, []string{"1", "2", "3"}, ids)
}

func TestScan_ImpossibleTimestamps(t *testing.T) {
	farFuture := fmt.Sprintf("%d-01-01T00:00:00Z", time.Now().Year()+5)
	nearFuture := fmt.Sprintf("%d-01-01T00:00:00Z", time.Now().Year()+1)
	msgs := []types.Message{
		{ID: "1", Text: "hello world", Timestamp: farFuture},
		{ID: "2", Text: "hello again", Timestamp: nearFuture},
		{ID: "3", Text: "hello third", Timestamp: "garbage-timestamp"},
	}
	r := Scan(msgs)

	require.Len(t, r.ImpossibleTimestamps, 1)
	assert.Equal(t, "1", r.ImpossibleTimestamps[0].ID)

	// The asymmetry: a malformed-but-present timestamp is neither
	// "impossible" nor "missing".
	assert.Empty(t, r.MissingTimestamp)
}

func TestScan_Stats(t *testing.T) {
	msgs := []types.Message{
		{ID: "1", MemberName: "Alice", Text: "abcd"},
		{ID: "2", MemberName: "Alice", Text: "abcdef"},
		{ID: "3", MemberName: "Bob", Text: ""},
	}
	r := Scan(msgs)

	assert.Equal(t, 3, r.Stats.TotalMessages)
	assert.Equal(t, 2, r.Stats.UniqueUsers)
	assert.InDelta(t, 10.0/3.0, r.Stats.AvgTextLength, 0.001)
}

func TestScan_EmptySet(t *testing.T) {
	r := Scan(nil)
	assert.Equal(t, 0, r.Stats.TotalMessages)
	assert.Empty(t, r.Duplicates)
	assert.Zero(t, r.Stats.AvgTextLength)
}
