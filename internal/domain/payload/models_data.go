package payload

import "github.com/dreamina/aigateway/internal/pkg/upstream"

// Models is the built-in model table. Forced-resolution models (e.g. an
// avatar model constrained to square output in a given region) return
// isForced=true from ResolveResolution regardless of the requested ratio
// or tier.
var Models = RegionModels{
	upstream.RegionCN: {
		"jimeng-4.5": {UpstreamCode: "high_aes_general_v45", Resolution: modelResolution{SupportedEdge: 64}},
		"jimeng-4.0": {UpstreamCode: "high_aes_general_v40", Resolution: modelResolution{SupportedEdge: 64}},
		"jimeng-xl-pro": {UpstreamCode: "high_aes_general_v30_18b", Resolution: modelResolution{Forced: &Resolution{Width: 1024, Height: 1024}}},
		"jimeng-video-3.0": {UpstreamCode: "video_gen_v30", Resolution: modelResolution{SupportedEdge: 32}},
	},
	upstream.RegionUS: {
		"dreamina-4.5": {UpstreamCode: "high_aes_general_v45", Resolution: modelResolution{SupportedEdge: 64}},
		"dreamina-3.0": {UpstreamCode: "high_aes_general_v30_18b", Resolution: modelResolution{SupportedEdge: 64}},
		"dreamina-video-3.0": {UpstreamCode: "video_gen_v30", Resolution: modelResolution{SupportedEdge: 32}},
	},
	upstream.RegionHK: {
		"dreamina-4.5": {UpstreamCode: "high_aes_general_v45", Resolution: modelResolution{SupportedEdge: 64}},
		"dreamina-3.0": {UpstreamCode: "high_aes_general_v30_18b", Resolution: modelResolution{SupportedEdge: 64}},
		"dreamina-video-3.0": {UpstreamCode: "video_gen_v30", Resolution: modelResolution{SupportedEdge: 32}},
	},
}

// Defaults is the per-region default model, used for the cross-region
// substitution rule in spec.md §4.5.
var Defaults = RegionDefaults{
	upstream.RegionCN: "jimeng-4.5",
	upstream.RegionUS: "dreamina-4.5",
	upstream.RegionHK: "dreamina-4.5",
}

// resolutionTiers maps a requested tier to its baseline long-edge pixel
// count for a 1:1 ratio; ResolveResolution scales both edges to preserve
// the requested aspect ratio.
var resolutionTiers = map[string]int{
	"480p":  854,
	"720p":  1280,
	"1080p": 1920,
	"2k":    2560,
}

const defaultResolutionTier = "1080p"
