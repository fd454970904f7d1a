package classify

import (
	"math"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// TokenSetRatio scores the similarity of two descriptions on a 0-100 scale,
// insensitive to word order and repetition: both strings are reduced to
// sorted unique token sets and the score is the best similarity ratio among
// the intersection and the two intersection-plus-remainder combinations.
// An edit-distance ratio alone would punish reordered words; the token-set
// construction is what keeps "rent office" and "office rent" at 100.
func TokenSetRatio(a, b string) int {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter, restA, restB := partition(ta, tb)

	s0 := strings.Join(inter, " ")
	s1 := strings.TrimSpace(s0 + " " + strings.Join(restA, " "))
	s2 := strings.TrimSpace(s0 + " " + strings.Join(restB, " "))

	best := ratio(s0, s1)
	if r := ratio(s0, s2); r > best {
		best = r
	}
	if r := ratio(s1, s2); r > best {
		best = r
	}
	return best
}

// tokenize lowercases, strips non-alphanumerics, and returns the unique
// tokens sorted.
func tokenize(s string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') || r > 127 {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	seen := make(map[string]struct{})
	var tokens []string
	for _, t := range strings.Fields(b.String()) {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// partition splits two sorted token sets into their intersection and the
// remainders, each sorted.
func partition(a, b []string) (inter, restA, restB []string) {
	inB := make(map[string]struct{}, len(b))
	for _, t := range b {
		inB[t] = struct{}{}
	}
	inA := make(map[string]struct{}, len(a))
	for _, t := range a {
		inA[t] = struct{}{}
	}

	for _, t := range a {
		if _, ok := inB[t]; ok {
			inter = append(inter, t)
		} else {
			restA = append(restA, t)
		}
	}
	for _, t := range b {
		if _, ok := inA[t]; !ok {
			restB = append(restB, t)
		}
	}
	return inter, restA, restB
}

// ratio is the Levenshtein similarity of two strings scaled to 0-100.
func ratio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	r := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	return int(math.Round(r * 100))
}
