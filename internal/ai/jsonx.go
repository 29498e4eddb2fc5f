package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Completion models are asked for bare JSON, but in practice replies
// arrive wrapped in code fences or prose. These patterns strip the
// wrapping before parsing.
var (
	codeFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")
	arrayRegex     = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// ParseIndexList parses a completion reply that should be a JSON array
// of 1-based integer indices. Non-integer entries are dropped; a reply
// that is valid JSON of any other shape, or no JSON at all, is an
// error.
//
// Strategy: unwrap a code fence if present; parse directly when the
// remainder is valid JSON; otherwise pull the first bracketed span out
// of mixed prose.
func ParseIndexList(text string) ([]int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty reply")
	}

	if m := codeFenceRegex.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	if json.Valid([]byte(text)) {
		// Valid JSON of the wrong shape is a final answer, not
		// something to dig an array out of.
		return parseIntArray(text)
	}
	if arr := arrayRegex.FindString(text); arr != "" {
		return parseIntArray(arr)
	}
	return nil, fmt.Errorf("reply contains no JSON array")
}

func parseIntArray(text string) ([]int, error) {
	var raw []any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		// Distinguish "valid JSON, wrong shape" from "not JSON": both
		// are failures, but the error message should say which.
		var anyVal any
		if json.Unmarshal([]byte(text), &anyVal) == nil {
			return nil, fmt.Errorf("parsed JSON is not an array")
		}
		return nil, err
	}

	indices := make([]int, 0, len(raw))
	for _, v := range raw {
		// Non-integer entries (strings, fractions, nested values) are
		// dropped, not fatal.
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			indices = append(indices, int(f))
		}
	}
	return indices, nil
}
