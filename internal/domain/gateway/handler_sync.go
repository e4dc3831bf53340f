package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/dreamina/aigateway/internal/domain/generation"
	"github.com/dreamina/aigateway/internal/pkg/response"
	"github.com/dreamina/aigateway/internal/pkg/validator"
)

// GenerateImage handles POST /v1/images/generations: sync text-to-image
// (or multi-image, when the request calls for it).
func (h *Handler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	cred, ok := requireCredential(w, r)
	if !ok {
		return
	}

	var req ImageGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	in := generation.Input{
		Model:          req.Model,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Ratio:          req.Ratio,
		ResolutionTier: req.Resolution,
		Seed:           req.Seed,
		SampleStrength: req.SampleStrength,
		Count:          req.Count,
	}

	urls, err := h.controller.GenerateImage(r.Context(), cred, in, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"urls": urls})
}

// GenerateComposition handles POST /v1/images/compositions: sync
// image-to-image blending of one or more uploaded source images.
func (h *Handler) GenerateComposition(w http.ResponseWriter, r *http.Request) {
	cred, ok := requireCredential(w, r)
	if !ok {
		return
	}

	var req ImageCompositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	images, err := decodeImages(req.Images)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	in := generation.Input{
		Model:          req.Model,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		ResolutionTier: req.Resolution,
		Seed:           req.Seed,
		SampleStrength: req.SampleStrength,
		Images:         images,
	}

	urls, err := h.controller.GenerateImageComposition(r.Context(), cred, in, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"urls": urls})
}

// GenerateVideo handles POST /v1/videos/generations: sync image-to-video.
func (h *Handler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	cred, ok := requireCredential(w, r)
	if !ok {
		return
	}

	var req VideoGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	images, err := decodeImages(req.Images)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	in := generation.Input{
		Model:           req.Model,
		Prompt:          req.Prompt,
		NegativePrompt:  req.NegativePrompt,
		Seed:            req.Seed,
		Images:          images,
		DurationSeconds: req.DurationSeconds,
	}

	urls, err := h.controller.GenerateVideo(r.Context(), cred, in, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"urls": urls})
}

// ChatCompletions handles POST /v1/chat/completions: a passthrough that
// treats the last message's content as a text-to-image prompt (spec.md §6).
func (h *Handler) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	cred, ok := requireCredential(w, r)
	if !ok {
		return
	}

	var req ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	prompt := req.Messages[len(req.Messages)-1].Content

	in := generation.Input{
		Model:  req.Model,
		Prompt: prompt,
	}

	urls, err := h.controller.GenerateImage(r.Context(), cred, in, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"urls": urls})
}
