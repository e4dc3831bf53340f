package payload

import "github.com/dreamina/aigateway/internal/pkg/upstream"

// Request is the fully-resolved input to Build: every value the caller
// (Generation Controller) must already have decided before the envelope
// can be shaped.
type Request struct {
	Model            string
	UpstreamModel     string
	Mode             Mode
	Prompt           string
	NegativePrompt   string
	Region           upstream.Region
	Resolution       Resolution
	SampleStrength   float64
	Seed             int64
	UploadedImageURIs []string
	IntelligentRatio bool
	Count            int
	DurationSeconds  int
	SubmitID         string
	ComponentID      string
}

// CoreParam carries the generation controls common to every mode.
type CoreParam struct {
	ModelCode        string  `json:"model_req_key"`
	Resolution       string  `json:"resolution_type"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Seed             int64   `json:"seed"`
	SampleStrength   float64 `json:"sample_strength"`
	IntelligentRatio bool    `json:"intelligent_ratio"`
	DurationSeconds  int     `json:"duration,omitempty"`
}

// AbilityParam is one entry in draft_content's ability list: a single
// generation/edit capability (text-to-image, blend, postedit) with its own
// strength.
type AbilityParam struct {
	AbilityName string  `json:"ability"`
	Strength    float64 `json:"strength,omitempty"`
}

// DraftContent is the component tree upstream expects describing what to
// generate and with which abilities.
type DraftContent struct {
	ComponentID     string         `json:"component_id"`
	GenerateType    string         `json:"generate_type"`
	Abilities       []AbilityParam `json:"ability_list"`
	PromptPlaceholders []string    `json:"prompt_placeholder_list,omitempty"`
	PosteditParam   map[string]interface{} `json:"postedit_param,omitempty"`
}

// MetricsExtra is the telemetry envelope that accompanies every generation
// request.
type MetricsExtra struct {
	Scene          string             `json:"scene"`
	SubmitID       string             `json:"submit_id"`
	ResolutionType string             `json:"resolution_type"`
	TargetCount    int                `json:"target_count,omitempty"`
	AbilityStrength map[string]float64 `json:"ability_strength,omitempty"`
}

// Envelope is the fully-built upstream request body.
type Envelope struct {
	Prompt         string       `json:"prompt"`
	NegativePrompt string       `json:"negative_prompt,omitempty"`
	CoreParam      CoreParam    `json:"core_param"`
	DraftContent   DraftContent `json:"draft_content"`
	MetricsExtra   MetricsExtra `json:"metrics_extra"`
	ImageURIs      []string     `json:"image_uris,omitempty"`
}

const (
	sceneBasicGenerate = "ImageBasicGenerate"
	sceneMultiGenerate = "ImageMultiGenerate"
	sceneImg2Img       = "ImageBlendGenerate"
	sceneImg2Video     = "VideoBasicGenerate"
)

// Build constructs the upstream envelope for req.Mode. Deterministic given
// its inputs (modulo Seed/SubmitID when left to the caller to randomize —
// Build itself never generates either).
func Build(req Request) Envelope {
	switch req.Mode {
	case ModeImg2Img:
		return buildImg2Img(req)
	case ModeMultiImg:
		return buildMultiImg(req)
	case ModeImg2Video:
		return buildImg2Video(req)
	default:
		return buildText2Img(req)
	}
}

func coreParam(req Request) CoreParam {
	return CoreParam{
		ModelCode:        req.UpstreamModel,
		Resolution:       resolutionLabel(req.Resolution),
		Width:            req.Resolution.Width,
		Height:           req.Resolution.Height,
		Seed:             req.Seed,
		SampleStrength:   req.SampleStrength,
		IntelligentRatio: req.IntelligentRatio,
		DurationSeconds:  req.DurationSeconds,
	}
}

func resolutionLabel(r Resolution) string {
	if r.IsForced {
		return "forced"
	}
	return defaultResolutionTier
}

func buildText2Img(req Request) Envelope {
	return Envelope{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		CoreParam:      coreParam(req),
		DraftContent: DraftContent{
			ComponentID:  req.ComponentID,
			GenerateType: "text2img",
			Abilities:    []AbilityParam{{AbilityName: "generate"}},
		},
		MetricsExtra: MetricsExtra{
			Scene:          sceneBasicGenerate,
			SubmitID:       req.SubmitID,
			ResolutionType: resolutionLabel(req.Resolution),
		},
	}
}

func buildImg2Img(req Request) Envelope {
	return Envelope{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		CoreParam:      coreParam(req),
		DraftContent: DraftContent{
			ComponentID:  req.ComponentID,
			GenerateType: "img2img",
			Abilities:    []AbilityParam{{AbilityName: "blend", Strength: req.SampleStrength}},
		},
		MetricsExtra: MetricsExtra{
			Scene:          sceneImg2Img,
			SubmitID:       req.SubmitID,
			ResolutionType: resolutionLabel(req.Resolution),
			AbilityStrength: map[string]float64{"blend": req.SampleStrength},
		},
		ImageURIs: req.UploadedImageURIs,
	}
}

func buildMultiImg(req Request) Envelope {
	env := buildText2Img(req)
	env.DraftContent.GenerateType = "multi_img"
	env.MetricsExtra.Scene = sceneMultiGenerate
	env.MetricsExtra.TargetCount = req.Count
	return env
}

func buildImg2Video(req Request) Envelope {
	return Envelope{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		CoreParam:      coreParam(req),
		DraftContent: DraftContent{
			ComponentID:  req.ComponentID,
			GenerateType: "img2video",
			Abilities:    []AbilityParam{{AbilityName: "video_generate"}},
		},
		MetricsExtra: MetricsExtra{
			Scene:          sceneImg2Video,
			SubmitID:       req.SubmitID,
			ResolutionType: resolutionLabel(req.Resolution),
		},
		ImageURIs: req.UploadedImageURIs,
	}
}
