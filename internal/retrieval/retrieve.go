// Package retrieval ranks member messages against a question and
// packs the winners into a bounded context block for the answerer.
package retrieval

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/aurorahq/memberqa/internal/types"
)

// DefaultTopK is the number of snippets retrieved for a question.
const DefaultTopK = 24

// minScore is the similarity floor below which a message is not
// considered relevant.
const minScore = 40

// Retrieve returns up to k messages ordered by descending token-set
// similarity to the question. Messages scoring below the floor are
// dropped; if that leaves nothing, the first k messages are returned
// in their original order instead — the pipeline never hands the
// answerer an empty context just because nothing scored well.
func Retrieve(msgs []types.Message, question string, k int) []types.Message {
	if len(msgs) == 0 {
		return nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	type scored struct {
		idx   int
		score int
	}
	results := make([]scored, len(msgs))
	for i, m := range msgs {
		results[i] = scored{idx: i, score: TokenSetRatio(question, renderForMatch(m))}
	}
	// Stable sort keeps first-seen order on score ties, so ranking is
	// reproducible run to run.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	limit := k
	if limit > len(results) {
		limit = len(results)
	}

	var ranked []types.Message
	for _, r := range results[:limit] {
		if r.score >= minScore {
			ranked = append(ranked, msgs[r.idx])
		}
	}
	if len(ranked) == 0 {
		for i := 0; i < limit; i++ {
			ranked = append(ranked, msgs[i])
		}
	}
	return ranked
}

// renderForMatch is the comparison form of a message.
func renderForMatch(m types.Message) string {
	return fmt.Sprintf("%s :: %s", m.MemberName, m.Text)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// DefaultMaxContextChars bounds the context block handed to the
// completion service.
const DefaultMaxContextChars = 8000

// BuildContext renders snippets into a newline-joined context block.
// Each line is "- name | timestamp | id: text" with whitespace runs in
// the text collapsed. Before a line is appended, the running character
// total plus the line length is checked against maxChars; the first
// line that would cross the budget stops construction entirely. Later,
// possibly more relevant, snippets are silently dropped — bounded
// prompts beat complete ones here.
func BuildContext(snippets []types.Message, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}

	var lines []string
	used := 0
	for _, m := range snippets {
		text := strings.TrimSpace(whitespaceRun.ReplaceAllString(m.Text, " "))
		line := fmt.Sprintf("- %s | %s | %s: %s", m.MemberName, m.Timestamp, m.ID, text)
		if used+len(line) > maxChars {
			break
		}
		lines = append(lines, line)
		used += len(line)
	}
	return strings.Join(lines, "\n")
}
