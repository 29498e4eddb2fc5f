package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurorahq/memberqa/internal/types"
)

// spacedMessages builds n messages for user, gap apart, starting at a
// fixed instant.
func spacedMessages(user string, n int, gap time.Duration) []types.Message {
	start := time.Date(2024, 3, 15, 19, 0, 0, 0, time.UTC)
	msgs := make([]types.Message, n)
	for i := 0; i < n; i++ {
		msgs[i] = types.Message{
			ID:         fmt.Sprintf("%s-%d", user, i),
			MemberName: user,
			Text:       "hi",
			Timestamp:  start.Add(time.Duration(i) * gap).Format(time.RFC3339),
		}
	}
	return msgs
}

func TestDetectBursts_SpacingDecides(t *testing.T) {
	// 5 messages 10s apart span 40s: no burst. 5 messages 5s apart
	// span 20s: burst.
	slow := spacedMessages("A", 5, 10*time.Second)
	fast := spacedMessages("B", 5, 5*time.Second)

	got := DetectBursts(append(slow, fast...), 5, 30*time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].User)
	assert.Equal(t, 5, got[0].Count)
	assert.Equal(t, fast[0].Timestamp, got[0].Start)
	assert.Equal(t, fast[4].Timestamp, got[0].End)
}

func TestDetectBursts_AtMostOnePerUser(t *testing.T) {
	// 20 rapid-fire messages contain many qualifying windows; the
	// detector flags the user once and moves on.
	msgs := spacedMessages("A", 20, time.Second)
	got := DetectBursts(msgs, 5, 30*time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, msgs[0].Timestamp, got[0].Start)
	assert.Equal(t, msgs[4].Timestamp, got[0].End)
}

func TestDetectBursts_WindowSpanInvariant(t *testing.T) {
	msgs := append(spacedMessages("A", 8, 4*time.Second), spacedMessages("C", 6, 29*time.Second)...)
	window := 30 * time.Second
	for _, b := range DetectBursts(msgs, 5, window) {
		start, err := time.Parse(time.RFC3339, b.Start)
		require.NoError(t, err)
		end, err := time.Parse(time.RFC3339, b.End)
		require.NoError(t, err)
		assert.LessOrEqual(t, end.Sub(start), window)
	}
}

func TestDetectBursts_TooFewMessages(t *testing.T) {
	msgs := spacedMessages("A", 4, time.Second)
	assert.Empty(t, DetectBursts(msgs, 5, 30*time.Second))
}

func TestDetectBursts_UnparseableTimestampsDropped(t *testing.T) {
	msgs := spacedMessages("A", 4, time.Second)
	msgs = append(msgs,
		types.Message{ID: "bad1", MemberName: "A", Timestamp: "not a date"},
		types.Message{ID: "bad2", MemberName: "A", Timestamp: ""},
	)
	// Only 4 timestamped messages survive: below threshold.
	assert.Empty(t, DetectBursts(msgs, 5, 30*time.Second))
}

func TestDetectBursts_UnknownBucket(t *testing.T) {
	msgs := spacedMessages("", 5, time.Second)
	got := DetectBursts(msgs, 5, 30*time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, "Unknown", got[0].User)
}

func TestDetectBursts_SortsBeforeScanning(t *testing.T) {
	msgs := spacedMessages("A", 5, 2*time.Second)
	// Shuffle arrival order; detection works on timestamp order.
	shuffled := []types.Message{msgs[3], msgs[0], msgs[4], msgs[1], msgs[2]}
	got := DetectBursts(shuffled, 5, 30*time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, msgs[0].Timestamp, got[0].Start)
	assert.Equal(t, msgs[4].Timestamp, got[0].End)
}
