package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRatio(t *testing.T) {
	cases := []struct {
		name    string
		ratio   string
		wantW   int
		wantH   int
	}{
		{"square", "1:1", 1, 1},
		{"widescreen", "16:9", 16, 9},
		{"malformed", "not-a-ratio", 1, 1},
		{"missing-colon", "169", 1, 1},
		{"zero-part", "0:9", 1, 1},
		{"negative-part", "-1:9", 1, 1},
		{"whitespace", " 4 : 3 ", 4, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := ParseRatio(tc.ratio)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestResolveResolutionForcedModelIgnoresRatioAndTier(t *testing.T) {
	entry := ModelEntry{
		Resolution: modelResolution{Forced: &Resolution{Width: 1024, Height: 1024}},
	}

	res := ResolveResolution(entry, "16:9", "1080p")

	assert.True(t, res.IsForced)
	assert.Equal(t, 1024, res.Width)
	assert.Equal(t, 1024, res.Height)
}

func TestResolveResolutionPreservesRatioAndRoundsToEdge(t *testing.T) {
	entry := ModelEntry{Resolution: modelResolution{SupportedEdge: 64}}

	res := ResolveResolution(entry, "16:9", "720p")

	assert.False(t, res.IsForced)
	assert.Equal(t, 0, res.Width%64)
	assert.Equal(t, 0, res.Height%64)
	assert.Greater(t, res.Width, res.Height)
}

func TestResolveResolutionUnknownTierFallsBackToDefault(t *testing.T) {
	entry := ModelEntry{Resolution: modelResolution{SupportedEdge: 8}}

	withUnknown := ResolveResolution(entry, "1:1", "not-a-tier")
	withDefault := ResolveResolution(entry, "1:1", "")

	assert.Equal(t, withDefault.Width, withUnknown.Width)
	assert.Equal(t, withDefault.Height, withUnknown.Height)
}

func TestDetectMultiImageCountExplicitCountWins(t *testing.T) {
	count, isMulti := DetectMultiImageCount(3, "a single prompt")
	assert.True(t, isMulti)
	assert.Equal(t, 3, count)
}

func TestDetectMultiImageCountHeuristicFallback(t *testing.T) {
	count, isMulti := DetectMultiImageCount(0, "给我生成4张图片")
	assert.True(t, isMulti)
	assert.Equal(t, 4, count)
}

func TestDetectMultiImageCountNoMatch(t *testing.T) {
	count, isMulti := DetectMultiImageCount(0, "just a prompt with 4 words")
	assert.False(t, isMulti)
	assert.Equal(t, 0, count)
}

func TestDetectMultiImageCountSingleIsNotMulti(t *testing.T) {
	count, isMulti := DetectMultiImageCount(1, "一张图")
	assert.False(t, isMulti)
	assert.Equal(t, 0, count)
}
