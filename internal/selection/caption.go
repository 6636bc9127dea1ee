package selection

import (
	"hash/fnv"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

const (
	captionTopK       = 5
	placeholderMarker = "logic, but make it fun"
	lastResortCaption = "That moment the plan falls apart"
)

var pronounPattern = regexp.MustCompile(`\b(i|me|my|you|your|we|us)\b`)

// ScoreCaption rates one candidate against the topic hint. Placeholder
// patterns are penalized, hint-token overlap and relatable wording are
// rewarded, and a small deterministic jitter breaks ties between runs.
func ScoreCaption(candidate, hint string) float64 {
	s := strings.ToLower(candidate)
	score := 0.0

	if strings.Contains(s, placeholderMarker) {
		score -= 5.0
	}
	for _, t := range tokensFromKeyword(hint) {
		if strings.Contains(s, t) {
			score += 3.0
			break
		}
	}
	if n := len(candidate); n >= 6 && n <= 90 {
		score += 1.0
	}
	if pronounPattern.MatchString(s) {
		score += 0.5
	}
	score += float64(jitterHash(candidate)%11) / 100.0
	return score
}

// PickCaption chooses one caption from the candidate list: near-duplicates
// are collapsed, candidates are ranked by ScoreCaption, and the winner is
// drawn randomly from the top five so repeated calls with the same input
// do not produce visibly identical output. A degenerate list falls back to
// the topic phrase bank.
func PickCaption(candidates []string, hint string) string {
	candidates = dedupeNear(candidates)
	if len(candidates) == 0 {
		return PickCaption(FallbackCaptions(hint), hint)
	}

	real := lo.Filter(candidates, func(c string, _ int) bool {
		s := strings.ToLower(c)
		return !strings.Contains(s, placeholderMarker) && !strings.Contains(s, "placeholder")
	})
	pool := real
	if len(pool) == 0 {
		// Everything is placeholder text: substitute the phrase bank.
		pool = dedupeNear(FallbackCaptions(hint))
		if len(pool) == 0 {
			return lastResortCaption
		}
	}

	ranked := make([]string, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ScoreCaption(ranked[i], hint) > ScoreCaption(ranked[j], hint)
	})

	top := ranked[:min(captionTopK, len(ranked))]
	rng := freshRand()
	return top[rng.Intn(len(top))]
}

// dedupeNear drops candidates that are near-duplicates of an earlier one
// (small edit distance relative to length).
func dedupeNear(candidates []string) []string {
	var kept []string
	for _, c := range candidates {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" {
			continue
		}
		dup := false
		for _, prev := range kept {
			dist := levenshtein.DistanceForStrings([]rune(strings.ToLower(prev)), []rune(strings.ToLower(trimmed)), levenshtein.DefaultOptions)
			longer := max(len([]rune(prev)), len([]rune(trimmed)))
			if longer > 0 && float64(dist)/float64(longer) < 0.25 {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, trimmed)
		}
	}
	return kept
}

func jitterHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
