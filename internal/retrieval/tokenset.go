package retrieval

import (
	"sort"
	"strings"
)

// TokenSetRatio scores the similarity of two strings on a 0-100 scale,
// treating each as an unordered set of lowercased whitespace tokens.
// Repeated words and word order do not affect the score. When one
// token set contains the other the score is 100.
//
// The comparison follows the classic token_set construction: both sets
// are split into the sorted intersection and the sorted differences,
// and the best pairwise indel ratio of the three joined forms wins.
func TokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 100
	}

	var sect, diffAB, diffBA []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			sect = append(sect, tok)
		} else {
			diffAB = append(diffAB, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			diffBA = append(diffBA, tok)
		}
	}
	sort.Strings(sect)
	sort.Strings(diffAB)
	sort.Strings(diffBA)

	sectStr := strings.Join(sect, " ")
	abStr := joinParts(sectStr, strings.Join(diffAB, " "))
	baStr := joinParts(sectStr, strings.Join(diffBA, " "))

	best := indelRatio(abStr, baStr)
	if len(sect) > 0 {
		if r := indelRatio(sectStr, abStr); r > best {
			best = r
		}
		if r := indelRatio(sectStr, baStr); r > best {
			best = r
		}
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

func joinParts(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

// indelRatio is the normalized insert/delete similarity of two strings
// on a 0-100 scale: 2*LCS / (len(a)+len(b)).
func indelRatio(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	lcs := lcsLength(ra, rb)
	return int(float64(2*lcs) / float64(total) * 100.0)
}

// lcsLength computes the longest-common-subsequence length with a
// two-row table. Inputs here are short rendered message lines, so the
// quadratic cost is irrelevant.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
