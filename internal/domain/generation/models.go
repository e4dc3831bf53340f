package generation

import (
	"github.com/dreamina/aigateway/internal/domain/payload"
	"github.com/dreamina/aigateway/internal/pkg/upstream"
)

// resolvedModel is the outcome of resolveModel: the model id and entry to
// use (the id differs from the requested one when the substitution rule
// fired).
type resolvedModel struct {
	ModelID string
	Entry   payload.ModelEntry
}

// resolveModel implements spec.md §4.5 step 1: look the requested model up
// in its own region's table; if absent, and the requested id happens to be
// another region's default, substitute this region's own default rather
// than failing outright. Any other miss is ErrUnsupportedModel.
//
// The model/region tables themselves live in internal/domain/payload
// (payload.Models / payload.Defaults) — the Payload Builder already needed
// them for resolution-tier rounding, so the Generation Controller reuses
// that one table instead of keeping a second copy.
func resolveModel(region upstream.Region, requestedModel string) (resolvedModel, error) {
	if entry, ok := payload.Models[region][requestedModel]; ok {
		return resolvedModel{ModelID: requestedModel, Entry: entry}, nil
	}

	if isAnyRegionDefault(requestedModel) {
		defaultID := payload.Defaults[region]
		if entry, ok := payload.Models[region][defaultID]; ok {
			return resolvedModel{ModelID: defaultID, Entry: entry}, nil
		}
	}

	return resolvedModel{}, ErrUnsupportedModel
}

func isAnyRegionDefault(modelID string) bool {
	for _, def := range payload.Defaults {
		if def == modelID {
			return true
		}
	}
	return false
}

// expectedItemCount returns the item count the Smart Poller should treat as
// terminal for a given mode, per spec.md §4.5 step 6.
func expectedItemCount(mode payload.Mode, requestedCount int) int {
	switch mode {
	case payload.ModeImg2Img, payload.ModeImg2Video:
		return 1
	case payload.ModeMultiImg:
		if requestedCount > 0 {
			return requestedCount
		}
		return 1
	default: // text2img
		return 4
	}
}
