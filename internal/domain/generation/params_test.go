package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputFromParamsDecodesAllFields(t *testing.T) {
	params := map[string]interface{}{
		"model":            "jimeng-4.5",
		"prompt":           "a cat",
		"negative_prompt":  "blurry",
		"ratio":            "16:9",
		"resolution_tier":  "1080p",
		"seed":             int64(7),
		"sample_strength":  0.6,
		"count":            2,
		"images":           [][]byte{{1, 2, 3}},
		"duration_seconds": 5,
	}

	in := InputFromParams(params)

	assert.Equal(t, "jimeng-4.5", in.Model)
	assert.Equal(t, "a cat", in.Prompt)
	assert.Equal(t, "blurry", in.NegativePrompt)
	assert.Equal(t, "16:9", in.Ratio)
	assert.Equal(t, "1080p", in.ResolutionTier)
	assert.Equal(t, int64(7), in.Seed)
	assert.Equal(t, 0.6, in.SampleStrength)
	assert.Equal(t, 2, in.Count)
	assert.Equal(t, [][]byte{{1, 2, 3}}, in.Images)
	assert.Equal(t, 5, in.DurationSeconds)
}

func TestInputFromParamsToleratesMissingAndWrongTypedValues(t *testing.T) {
	params := map[string]interface{}{
		"seed":  float64(3), // JSON-decoded numbers land as float64
		"count": int64(4),
	}

	in := InputFromParams(params)

	assert.Equal(t, "", in.Model)
	assert.Equal(t, int64(3), in.Seed)
	assert.Equal(t, 4, in.Count)
	assert.Nil(t, in.Images)
}

func TestInputFromParamsEmptyMapYieldsZeroValues(t *testing.T) {
	in := InputFromParams(nil)
	assert.Equal(t, Input{}, in)
}
