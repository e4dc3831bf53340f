package payload

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is a resolved pixel size plus whether it was forced by model
// policy.
type Resolution struct {
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	IsForced bool `json:"is_forced"`
}

// ParseRatio parses a "W:H" ratio string into its width/height parts, as
// given (not reduced). Degenerate or malformed input returns the 1:1 fallback.
func ParseRatio(ratio string) (w, h int) {
	parts := strings.SplitN(ratio, ":", 2)
	if len(parts) != 2 {
		return 1, 1
	}

	pw, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	ph, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || pw <= 0 || ph <= 0 {
		return 1, 1
	}
	return pw, ph
}

// roundToMultiple rounds v to the nearest positive multiple of edge (edge
// defaulting to 8 when unset).
func roundToMultiple(v, edge int) int {
	if edge <= 0 {
		edge = 8
	}
	rounded := ((v + edge/2) / edge) * edge
	if rounded <= 0 {
		rounded = edge
	}
	return rounded
}

// ResolveResolution implements spec.md §4.3's resolution resolution rules:
//  1. A model with a forced resolution always returns it with isForced=true.
//  2. Otherwise the requested ratio is parsed and the requested tier mapped
//     to pixel dimensions preserving that ratio.
//  3. Edges are rounded to the model's supported multiple. A degenerate
//     ratio falls back to 1:1 and an empty or unknown tier to
//     defaultResolutionTier; neither fallback depends on the region.
func ResolveResolution(entry ModelEntry, ratio, tier string) Resolution {
	if entry.Resolution.Forced != nil {
		return Resolution{
			Width:    entry.Resolution.Forced.Width,
			Height:   entry.Resolution.Forced.Height,
			IsForced: true,
		}
	}

	if tier == "" {
		tier = defaultResolutionTier
	}
	longEdge, ok := resolutionTiers[tier]
	if !ok {
		longEdge = resolutionTiers[defaultResolutionTier]
	}

	rw, rh := ParseRatio(ratio)

	var width, height int
	if rw >= rh {
		width = longEdge
		height = longEdge * rh / rw
	} else {
		height = longEdge
		width = longEdge * rw / rh
	}

	edge := entry.Resolution.SupportedEdge
	width = roundToMultiple(width, edge)
	height = roundToMultiple(height, edge)

	return Resolution{Width: width, Height: height, IsForced: false}
}

// DetectMultiImageCount looks for an explicit count, falling back to the
// Chinese-prompt "\d+张" heuristic preserved per spec.md §9 design notes
// (kept only as a fallback; prefer the explicit count field).
func DetectMultiImageCount(explicitCount int, prompt string) (count int, isMulti bool) {
	if explicitCount > 1 {
		return explicitCount, true
	}

	for i := 0; i < len(prompt); i++ {
		if prompt[i] < '0' || prompt[i] > '9' {
			continue
		}
		j := i
		for j < len(prompt) && prompt[j] >= '0' && prompt[j] <= '9' {
			j++
		}
		if j < len(prompt) && strings.HasPrefix(prompt[j:], "张") {
			if n, err := strconv.Atoi(prompt[i:j]); err == nil && n > 1 {
				return n, true
			}
		}
		i = j
	}

	return 0, false
}

// String implements fmt.Stringer for log-friendly output.
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d(forced=%v)", r.Width, r.Height, r.IsForced)
}
