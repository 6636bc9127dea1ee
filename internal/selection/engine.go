package selection

import (
	"hash/fnv"
	"math/rand"
	"path"
	"regexp"
	"strings"

	"reelsmith/internal/types"
	apperrors "reelsmith/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Engine selects bank assets for rendering. It owns no I/O: callers pass
// the listed catalog and the used-fingerprint set, the engine decides.
type Engine struct {
	basePrefix string
}

func NewEngine(basePrefix string) *Engine {
	return &Engine{basePrefix: ensureTrailingSlash(basePrefix)}
}

// PickRequest narrows the catalog and configures the randomness mode.
type PickRequest struct {
	Niche   string
	Keyword string

	// Used holds fingerprints already consumed by the (user, account)
	// pair. Ignored when AllowRepeats is set.
	Used         map[string]struct{}
	Exclude      map[string]struct{}
	AllowRepeats bool

	// Seed and Index page deterministically through a stable shuffle.
	// Nil Seed means fresh randomness per call.
	Seed  *int64
	Index int
}

// Picked is one selected asset with its fingerprint.
type Picked struct {
	Asset       types.Asset
	Fingerprint string
}

// Cursor lets a caller replay the shuffle and advance to the next item.
type Cursor struct {
	Seed  int64 `json:"seed"`
	Index int   `json:"index"`
}

// PickOne selects a single asset. With AllowRepeats the pick is freshly
// random and the returned cursor is nil; otherwise the pool is shuffled
// under a stable seed (supplied or derived from the request) and the
// cursor for the next pick is returned alongside.
func (e *Engine) PickOne(catalog []types.Asset, req PickRequest) (Picked, *Cursor, error) {
	candidates, err := e.eligible(catalog, req)
	if err != nil {
		return Picked{}, nil, err
	}

	if req.AllowRepeats && req.Seed == nil {
		rng := freshRand()
		return candidates[rng.Intn(len(candidates))], nil, nil
	}

	seed := int64(0)
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		seed = derivedSeed(req.Keyword, req.Niche)
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	// Index arrives from callers unchecked; wrap negatives instead of
	// letting the modulo go out of range.
	idx := req.Index % len(candidates)
	if idx < 0 {
		idx += len(candidates)
	}
	pick := candidates[idx]
	return pick, &Cursor{Seed: seed, Index: req.Index + 1}, nil
}

// PickMany selects up to count distinct assets with fresh randomness.
func (e *Engine) PickMany(catalog []types.Asset, req PickRequest, count int) ([]Picked, error) {
	candidates, err := e.eligible(catalog, req)
	if err != nil {
		return nil, err
	}
	rng := freshRand()
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if count > len(candidates) {
		count = len(candidates)
	}
	return candidates[:count], nil
}

// eligible applies the fallback chain: niche folder first, then the whole
// bank; keyword-token match first, then any video; never-repeat unless
// repeats are allowed. An empty final pool is a recoverable condition.
func (e *Engine) eligible(catalog []types.Asset, req PickRequest) ([]Picked, error) {
	videos := lo.Filter(catalog, func(a types.Asset, _ int) bool {
		return isVideo(a.Key, a.ContentType)
	})

	working := videos
	nicheName := req.Niche
	if req.Niche != "" {
		nichePrefix := e.basePrefix + SlugNiche(req.Niche) + "/"
		inNiche := lo.Filter(videos, func(a types.Asset, _ int) bool {
			return strings.HasPrefix(a.Key, nichePrefix)
		})
		if len(inNiche) > 0 {
			working = inNiche
		} else {
			nicheName = ""
		}
	}

	allowed := func(p Picked) bool {
		if _, excluded := req.Exclude[p.Asset.Key]; excluded {
			return false
		}
		if _, excluded := req.Exclude[p.Fingerprint]; excluded {
			return false
		}
		if req.AllowRepeats {
			return true
		}
		_, used := req.Used[p.Fingerprint]
		return !used
	}

	all := lo.Map(working, func(a types.Asset, _ int) Picked {
		return Picked{Asset: a, Fingerprint: Fingerprint(a)}
	})

	tokens := tokensFromKeyword(req.Keyword)
	candidates := lo.Filter(all, func(p Picked, _ int) bool {
		return matchesKeyword(tokens, p.Asset.Key, nicheName) && allowed(p)
	})
	if len(candidates) == 0 {
		// Keyword produced nothing; returning something beats
		// returning nothing.
		candidates = lo.Filter(all, func(p Picked, _ int) bool {
			return allowed(p)
		})
	}
	if len(candidates) == 0 {
		return nil, apperrors.ErrNoAssetAvailable
	}
	return candidates, nil
}

var keywordTokenPattern = regexp.MustCompile(`#?([a-z0-9][a-z0-9\-]*)`)
var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)
var hashtagPattern = regexp.MustCompile(`#([A-Za-z0-9\-]+)`)

// norm lowercases and collapses everything non-alphanumeric to spaces.
func norm(s string) string {
	return strings.TrimSpace(nonAlnumPattern.ReplaceAllString(strings.ToLower(s), " "))
}

// tokensFromKeyword turns "#reelz #joegoldberg" into ["reelz", "joegoldberg"].
func tokensFromKeyword(keyword string) []string {
	matches := keywordTokenPattern.FindAllStringSubmatch(strings.ToLower(keyword), -1)
	var tokens []string
	for _, m := range matches {
		if t := norm(m[1]); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func hashtagsFromFilename(filename string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(filename, -1)
	return lo.Map(matches, func(m []string, _ int) string {
		return strings.ToLower(m[1])
	})
}

// matchesKeyword is deliberately loose: normalized filename substring,
// filename hashtag, or niche folder name may carry the token.
func matchesKeyword(tokens []string, key string, nicheName string) bool {
	if len(tokens) == 0 {
		return true
	}
	filename := path.Base(key)
	fnameNorm := norm(filename)
	for _, t := range tokens {
		if strings.Contains(fnameNorm, t) {
			return true
		}
	}
	tags := hashtagsFromFilename(filename)
	for _, t := range tokens {
		if lo.Contains(tags, t) {
			return true
		}
	}
	if nicheName != "" {
		nicheNorm := norm(nicheName)
		for _, t := range tokens {
			if strings.Contains(nicheNorm, t) {
				return true
			}
		}
	}
	return false
}

// MatchKeyword reports whether an asset key (or its niche folder name)
// carries any token of the keyword. An empty keyword matches everything.
func MatchKeyword(keyword, key, nicheName string) bool {
	return matchesKeyword(tokensFromKeyword(keyword), key, nicheName)
}

func isVideo(key, contentType string) bool {
	n := strings.ToLower(key)
	for _, ext := range []string{".mp4", ".mov", ".m4v", ".webm"} {
		if strings.HasSuffix(n, ext) {
			return true
		}
	}
	return strings.HasPrefix(strings.ToLower(contentType), "video/")
}

// SlugNiche maps a niche name to its bank folder name.
func SlugNiche(niche string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(niche)), " ", "-")
}

func ensureTrailingSlash(p string) string {
	if p == "" || strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

func derivedSeed(keyword, niche string) int64 {
	h := fnv.New64a()
	h.Write([]byte(keyword + "|" + niche))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

// freshRand seeds from a random UUID so consecutive calls diverge even
// within the same nanosecond.
func freshRand() *rand.Rand {
	id := uuid.New()
	h := fnv.New64a()
	h.Write(id[:])
	return rand.New(rand.NewSource(int64(h.Sum64() & 0x7fffffffffffffff)))
}
