package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aurorahq/memberqa/internal/types"
)

// DefaultMaxExamples caps the candidate list sent to the completion
// service. The cap bounds prompt size; candidates beyond it are never
// considered, however underspecified they might be.
const DefaultMaxExamples = 80

// actionWords marks messages that look like action requests worth
// classifying at all.
var actionWords = []string{"book", "reserve", "schedule", "arrange", "order", "buy"}

// ClassifyResult is the outcome of one underspecified-request pass.
// Skipped distinguishes "the service was not configured or its reply
// was unusable" from "it ran and flagged nothing"; the flagged list is
// empty in both cases.
type ClassifyResult struct {
	Flagged []types.Message
	Skipped bool
}

// Classifier finds action-request messages that a human could not
// safely act on as written. The candidate filter is local; the actual
// judgment is delegated to the completion service.
type Classifier struct {
	completer Completer
	log       *slog.Logger
}

// NewClassifier builds a classifier over the given completion
// capability.
func NewClassifier(c Completer) *Classifier {
	return &Classifier{
		completer: c,
		log:       slog.Default().With("component", "classifier"),
	}
}

// Classify returns the subset of msgs flagged as underspecified.
//
// Candidates are messages whose lowercased text contains an action
// word, capped to the first maxExamples in original order. They are
// sent to the completion service as a 1-indexed list; the service
// replies with a JSON array of the offending indices. Any failure —
// no credential, transport exhaustion, unparseable reply — degrades to
// an empty result with Skipped set.
func (cl *Classifier) Classify(ctx context.Context, msgs []types.Message, maxExamples int) ClassifyResult {
	if maxExamples <= 0 {
		maxExamples = DefaultMaxExamples
	}

	var candidates []types.Message
	for _, m := range msgs {
		lower := strings.ToLower(m.Text)
		for _, w := range actionWords {
			if strings.Contains(lower, w) {
				candidates = append(candidates, m)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return ClassifyResult{}
	}
	if len(candidates) > maxExamples {
		candidates = candidates[:maxExamples]
	}

	if !cl.completer.Available() {
		cl.log.Warn("completion service not configured; skipping underspecified-request detection")
		return ClassifyResult{Skipped: true}
	}

	reply, err := cl.completer.Complete(ctx, Request{
		Operation:   "underspecified_check",
		System:      classifySystemPrompt,
		Prompt:      cl.buildPrompt(candidates),
		MaxTokens:   300,
		Temperature: 0.1,
	})
	if err != nil {
		cl.log.Warn("underspecified-request detection failed", "error", err)
		return ClassifyResult{Skipped: true}
	}

	indices, err := ParseIndexList(reply)
	if err != nil {
		cl.log.Warn("could not parse classification reply", "error", err)
		return ClassifyResult{Skipped: true}
	}

	var flagged []types.Message
	for _, idx := range indices {
		// Out-of-range indices are hallucinations; drop them.
		if idx >= 1 && idx <= len(candidates) {
			flagged = append(flagged, candidates[idx-1])
		}
	}
	return ClassifyResult{Flagged: flagged}
}

const classifySystemPrompt = `You are an expert concierge operations assistant.
You will be given a list of messages where clients are asking to book, reserve, schedule, or arrange something.

Your job is to mark which messages are UNDERSPECIFIED, meaning:
 - A human concierge could not safely complete the request as written, because key details are missing.
Examples of missing details include: date, time, number of people, origin/destination when relevant, or other critical parameters.
If a request has enough information to proceed or at least schedule a follow-up, consider it specified.

Return ONLY a JSON array of integers representing the line numbers of underspecified messages.
If none are underspecified, return an empty JSON array: [].`

// buildPrompt renders the numbered candidate list for the service.
// Newlines inside message text are collapsed so each candidate stays
// on one line.
func (cl *Classifier) buildPrompt(candidates []types.Message) string {
	var b strings.Builder
	b.WriteString("Here are the messages:\n\n")
	for i, m := range candidates {
		name := m.MemberName
		if name == "" {
			name = "Unknown"
		}
		text := strings.ReplaceAll(m.Text, "\n", " ")
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, name, text)
	}
	b.WriteString("\nWhich line numbers are underspecified? Answer ONLY with a JSON array of integers, e.g. [1, 4, 7].")
	return b.String()
}
