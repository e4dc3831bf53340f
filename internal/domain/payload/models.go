// Package payload builds upstream request envelopes for each generation
// mode. It is pure and side-effect free: given fully resolved inputs, it
// returns a JSON-ready envelope, with no network or storage access.
package payload

import "github.com/dreamina/aigateway/internal/pkg/upstream"

// Mode is a generation request shape.
type Mode string

const (
	ModeText2Img  Mode = "text2img"
	ModeImg2Img   Mode = "img2img"
	ModeMultiImg  Mode = "multi_img"
	ModeImg2Video Mode = "img2video"
)

// modelResolution describes a model's resolution policy: either it forces
// one fixed size, or it supports tier-based resolution with a given pixel
// multiple.
type modelResolution struct {
	Forced        *Resolution
	SupportedEdge int // pixel multiple output dimensions must round to
}

// ModelEntry is one model's upstream code and resolution policy. The
// per-region tables mapping user-facing model ids to entries are populated
// in models_data.go.
type ModelEntry struct {
	UpstreamCode string
	Resolution   modelResolution
}

// RegionModels maps region -> user-facing model id -> ModelEntry.
type RegionModels map[upstream.Region]map[string]ModelEntry

// RegionDefaults maps region -> the default user-facing model id used when
// an unsupported model is requested and it happens to be another region's
// default (spec.md §4.5 substitution rule).
type RegionDefaults map[upstream.Region]string
