package upstream

import "strings"

// Region selects upstream endpoints, the SigV4 signing region, and model
// availability. Derived from a prefix marker on the credential string
// (spec.md §6); absence defaults to CN.
type Region string

const (
	RegionCN Region = "CN"
	RegionUS Region = "US"
	RegionHK Region = "HK" // also covers SG/JP mirrors
)

// ParseRegion extracts a region from a "US:..." / "HK:..." prefixed
// credential string, defaulting to CN when no recognized marker is present.
func ParseRegion(credential string) Region {
	upper := strings.ToUpper(credential)
	switch {
	case strings.HasPrefix(upper, "US:"):
		return RegionUS
	case strings.HasPrefix(upper, "HK:"), strings.HasPrefix(upper, "SG:"), strings.HasPrefix(upper, "JP:"):
		return RegionHK
	default:
		return RegionCN
	}
}

// Endpoints is the set of upstream bases a region resolves to.
type Endpoints struct {
	Dreamina string // mweb API base: get_upload_token, aigc_draft/generate, get_history_by_ids
	Imagex   string // ApplyImageUpload / CommitImageUpload base
	Commerce string // billing/telemetry base
	AWSRegion string // SigV4 signing region name
	ServiceID string // ApplyImageUpload ServiceId for this region
	Referer  string
}

// defaultEndpoints are the built-in bases; any may be overridden by the
// corresponding *_MIRROR environment variable (spec.md §6).
var defaultEndpoints = map[Region]Endpoints{
	RegionCN: {
		Dreamina:  "https://jimeng.jianying.com",
		Imagex:    "https://imagex.bytedanceapi.com",
		Commerce:  "https://commerce.jianying.com",
		AWSRegion: "cn-north-1",
		ServiceID: "efx9rb7c8s",
		Referer:   "https://jimeng.jianying.com/",
	},
	RegionUS: {
		Dreamina:  "https://dreamina.capcut.com",
		Imagex:    "https://imagex.us-east-1.bytedanceapi.com",
		Commerce:  "https://commerce.capcut.com",
		AWSRegion: "us-east-1",
		ServiceID: "8elcdmn2y5",
		Referer:   "https://dreamina.capcut.com/",
	},
	RegionHK: {
		Dreamina:  "https://dreamina.capcut.com",
		Imagex:    "https://imagex.ap-singapore-1.bytedanceapi.com",
		Commerce:  "https://commerce.capcut.com",
		AWSRegion: "ap-singapore-1",
		ServiceID: "8elcdmn2y5",
		Referer:   "https://dreamina.capcut.com/",
	},
}

// MirrorOverrides holds the *_MIRROR configuration values that replace the
// built-in bases for a region when set.
type MirrorOverrides struct {
	DreaminaUS, DreaminaHK             string
	ImagexUS, ImagexHK, ImagexCN       string
	JimengCN                           string
	CommerceUS, CommerceHK             string
}

// Resolve returns the Endpoints for region, applying any configured mirror
// overrides.
func Resolve(region Region, overrides MirrorOverrides) Endpoints {
	ep := defaultEndpoints[region]
	if ep == (Endpoints{}) {
		ep = defaultEndpoints[RegionCN]
	}

	switch region {
	case RegionCN:
		if overrides.JimengCN != "" {
			ep.Dreamina = overrides.JimengCN
		}
		if overrides.ImagexCN != "" {
			ep.Imagex = overrides.ImagexCN
		}
	case RegionUS:
		if overrides.DreaminaUS != "" {
			ep.Dreamina = overrides.DreaminaUS
		}
		if overrides.ImagexUS != "" {
			ep.Imagex = overrides.ImagexUS
		}
		if overrides.CommerceUS != "" {
			ep.Commerce = overrides.CommerceUS
		}
	case RegionHK:
		if overrides.DreaminaHK != "" {
			ep.Dreamina = overrides.DreaminaHK
		}
		if overrides.ImagexHK != "" {
			ep.Imagex = overrides.ImagexHK
		}
		if overrides.CommerceHK != "" {
			ep.Commerce = overrides.CommerceHK
		}
	}

	return ep
}
