package selection

import (
	"testing"

	"reelsmith/internal/types"
	apperrors "reelsmith/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bankAsset(key string) types.Asset {
	return types.Asset{Key: key, Name: key, ContentType: "video/mp4"}
}

func fingerprintSet(assets ...types.Asset) map[string]struct{} {
	set := make(map[string]struct{})
	for _, a := range assets {
		set[Fingerprint(a)] = struct{}{}
	}
	return set
}

func TestFingerprintPreference(t *testing.T) {
	withMD5 := types.Asset{Key: "bank/a.mp4", MD5: "abc123", CRC32C: "zzz"}
	assert.Equal(t, "md5:abc123", Fingerprint(withMD5))

	withCRC := types.Asset{Key: "bank/a.mp4", CRC32C: "zzz"}
	assert.Equal(t, "crc32c:zzz", Fingerprint(withCRC))

	pathOnly := types.Asset{Key: "bank/a.mp4"}
	fp := Fingerprint(pathOnly)
	assert.Contains(t, fp, "path:")
	// Stable across calls.
	assert.Equal(t, fp, Fingerprint(pathOnly))
	// Different keys diverge.
	assert.NotEqual(t, fp, Fingerprint(types.Asset{Key: "bank/b.mp4"}))
}

func TestPickOneLastRemainingAsset(t *testing.T) {
	catalog := []types.Asset{
		bankAsset("bank/one.mp4"),
		bankAsset("bank/two.mp4"),
		bankAsset("bank/three.mp4"),
		bankAsset("bank/four.mp4"),
		bankAsset("bank/five.mp4"),
	}
	used := fingerprintSet(catalog[0], catalog[1], catalog[2], catalog[3])

	engine := NewEngine("bank/")
	for i := 0; i < 10; i++ {
		picked, _, err := engine.PickOne(catalog, PickRequest{Used: used})
		require.NoError(t, err)
		assert.Equal(t, "bank/five.mp4", picked.Asset.Key)
	}
}

func TestPickOneEmptyCatalogIsRecoverable(t *testing.T) {
	engine := NewEngine("bank/")
	_, _, err := engine.PickOne(nil, PickRequest{Keyword: "xyz-nonexistent"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNoAssetAvailable))
}

func TestPickOneExhaustedPoolIsRecoverable(t *testing.T) {
	catalog := []types.Asset{bankAsset("bank/one.mp4")}
	used := fingerprintSet(catalog[0])

	engine := NewEngine("bank/")
	_, _, err := engine.PickOne(catalog, PickRequest{Used: used})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNoAssetAvailable))

	// Explicit opt-in to repeats makes the pool eligible again.
	picked, _, err := engine.PickOne(catalog, PickRequest{Used: used, AllowRepeats: true})
	require.NoError(t, err)
	assert.Equal(t, "bank/one.mp4", picked.Asset.Key)
}

func TestPickOneNicheFolderFallsBackToRoot(t *testing.T) {
	catalog := []types.Asset{
		bankAsset("bank/fitness/squat.mp4"),
		bankAsset("bank/rooted.mp4"),
	}

	engine := NewEngine("bank/")

	picked, _, err := engine.PickOne(catalog, PickRequest{Niche: "fitness"})
	require.NoError(t, err)
	assert.Equal(t, "bank/fitness/squat.mp4", picked.Asset.Key)

	// Unknown niche folder: whole bank becomes the working set.
	seed := int64(7)
	picked, _, err = engine.PickOne(catalog, PickRequest{Niche: "cooking", Seed: &seed})
	require.NoError(t, err)
	assert.NotEmpty(t, picked.Asset.Key)
}

func TestPickOneKeywordFallback(t *testing.T) {
	catalog := []types.Asset{
		bankAsset("bank/dog-video.mp4"),
		bankAsset("bank/cat-video.mp4"),
	}

	engine := NewEngine("bank/")
	// No asset matches the keyword: the filter is dropped entirely.
	picked, _, err := engine.PickOne(catalog, PickRequest{Keyword: "spaceship"})
	require.NoError(t, err)
	assert.NotEmpty(t, picked.Asset.Key)
}

func TestPickOneKeywordMatch(t *testing.T) {
	catalog := []types.Asset{
		bankAsset("bank/dog-video.mp4"),
		bankAsset("bank/cat-video.mp4"),
	}

	engine := NewEngine("bank/")
	for i := 0; i < 10; i++ {
		picked, _, err := engine.PickOne(catalog, PickRequest{Keyword: "dog"})
		require.NoError(t, err)
		assert.Equal(t, "bank/dog-video.mp4", picked.Asset.Key)
	}
}

func TestPickOneDeterministicCursor(t *testing.T) {
	catalog := []types.Asset{
		bankAsset("bank/a.mp4"),
		bankAsset("bank/b.mp4"),
		bankAsset("bank/c.mp4"),
		bankAsset("bank/d.mp4"),
	}
	engine := NewEngine("bank/")
	seed := int64(42)

	// Same seed and index replay the same pick.
	first, cursor, err := engine.PickOne(catalog, PickRequest{Seed: &seed, Index: 0})
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, seed, cursor.Seed)
	assert.Equal(t, 1, cursor.Index)

	replay, _, err := engine.PickOne(catalog, PickRequest{Seed: &seed, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, first.Asset.Key, replay.Asset.Key)

	// Advancing the index pages through the shuffle without repeats.
	seen := map[string]bool{}
	for i := 0; i < len(catalog); i++ {
		picked, _, err := engine.PickOne(catalog, PickRequest{Seed: &seed, Index: i})
		require.NoError(t, err)
		assert.False(t, seen[picked.Asset.Key], "index %d repeated %s", i, picked.Asset.Key)
		seen[picked.Asset.Key] = true
	}
}

func TestPickOneNegativeIndexWraps(t *testing.T) {
	catalog := []types.Asset{
		bankAsset("bank/a.mp4"),
		bankAsset("bank/b.mp4"),
		bankAsset("bank/c.mp4"),
	}
	engine := NewEngine("bank/")
	seed := int64(42)

	picked, cursor, err := engine.PickOne(catalog, PickRequest{Seed: &seed, Index: -1})
	require.NoError(t, err)
	assert.NotEmpty(t, picked.Asset.Key)
	require.NotNil(t, cursor)
	assert.Equal(t, 0, cursor.Index)

	// -1 lands on the last slot of the shuffle.
	last, _, err := engine.PickOne(catalog, PickRequest{Seed: &seed, Index: len(catalog) - 1})
	require.NoError(t, err)
	assert.Equal(t, last.Asset.Key, picked.Asset.Key)
}

func TestPickOneDerivesSeedWhenMissing(t *testing.T) {
	catalog := []types.Asset{
		bankAsset("bank/a.mp4"),
		bankAsset("bank/b.mp4"),
	}
	engine := NewEngine("bank/")

	_, cursor, err := engine.PickOne(catalog, PickRequest{Keyword: "dog"})
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, derivedSeed("dog", ""), cursor.Seed)
}

func TestPickManyDistinct(t *testing.T) {
	catalog := []types.Asset{
		bankAsset("bank/a.mp4"),
		bankAsset("bank/b.mp4"),
		bankAsset("bank/c.mp4"),
	}
	engine := NewEngine("bank/")

	picked, err := engine.PickMany(catalog, PickRequest{}, 10)
	require.NoError(t, err)
	assert.Len(t, picked, 3)

	seen := map[string]bool{}
	for _, p := range picked {
		assert.False(t, seen[p.Asset.Key])
		seen[p.Asset.Key] = true
	}
}

func TestPickOneExcludesSessionKeys(t *testing.T) {
	catalog := []types.Asset{
		bankAsset("bank/a.mp4"),
		bankAsset("bank/b.mp4"),
	}
	engine := NewEngine("bank/")

	exclude := map[string]struct{}{Fingerprint(catalog[0]): {}}
	for i := 0; i < 10; i++ {
		picked, _, err := engine.PickOne(catalog, PickRequest{Exclude: exclude, AllowRepeats: true})
		require.NoError(t, err)
		assert.Equal(t, "bank/b.mp4", picked.Asset.Key)
	}
}

func TestNonVideoAssetsIgnored(t *testing.T) {
	catalog := []types.Asset{
		{Key: "bank/readme.txt", ContentType: "text/plain"},
		bankAsset("bank/clip.mp4"),
	}
	engine := NewEngine("bank/")

	picked, _, err := engine.PickOne(catalog, PickRequest{})
	require.NoError(t, err)
	assert.Equal(t, "bank/clip.mp4", picked.Asset.Key)
}

func TestMatchesKeyword(t *testing.T) {
	testCases := []struct {
		name      string
		tokens    []string
		key       string
		nicheName string
		want      bool
	}{
		{name: "no tokens always matches", tokens: nil, key: "bank/x.mp4", want: true},
		{name: "filename substring", tokens: []string{"dog"}, key: "bank/funny-dog.mp4", want: true},
		{name: "hashtag in filename", tokens: []string{"gains"}, key: "bank/clip #gains.mp4", want: true},
		{name: "niche name carries token", tokens: []string{"fitness"}, key: "bank/clip.mp4", nicheName: "fitness vibes", want: true},
		{name: "no match", tokens: []string{"spaceship"}, key: "bank/funny-dog.mp4", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, matchesKeyword(tc.tokens, tc.key, tc.nicheName))
		})
	}
}

func TestMatchKeyword(t *testing.T) {
	assert.True(t, MatchKeyword("", "bank/x.mp4", ""))
	assert.True(t, MatchKeyword("dog", "bank/funny-dog.mp4", ""))
	assert.True(t, MatchKeyword("#gains", "bank/clip #gains.mp4", ""))
	assert.False(t, MatchKeyword("spaceship", "bank/funny-dog.mp4", ""))
}
