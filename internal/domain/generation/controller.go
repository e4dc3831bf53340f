// Package generation implements the Generation Controller of spec.md
// §4.5: the single place that resolves a model, enforces quota, drives the
// Upload Pipeline, builds and submits the upstream envelope, and polls it
// to completion.
package generation

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dreamina/aigateway/internal/domain/payload"
	"github.com/dreamina/aigateway/internal/domain/poller"
	"github.com/dreamina/aigateway/internal/domain/quota"
	"github.com/dreamina/aigateway/internal/domain/upload"
	"github.com/dreamina/aigateway/internal/pkg/upstream"
)

// Input is a generation request's resolved user-facing fields, common to
// all three public operations; fields not meaningful to a given mode are
// simply left zero.
type Input struct {
	Model          string
	Prompt         string
	NegativePrompt string
	Ratio          string // "W:H"; ignored when the uploaded image supplies one
	ResolutionTier string // "480p"/"720p"/"1080p"/"2k"
	Seed           int64
	SampleStrength float64
	Count          int    // explicit multi-image count, when known
	Images         [][]byte
	DurationSeconds int // video only; passed through for upstream logging, not enforced here
}

// Controller is the Generation Controller. One instance is shared by every
// request; it holds no per-request state.
type Controller struct {
	uploader *upload.Pipeline
	ledger   quota.Ledger
	draft    *draftClient
}

// NewController wires a Controller from its collaborators.
func NewController(uploader *upload.Pipeline, ledger quota.Ledger, httpClient *http.Client, overrides upstream.MirrorOverrides) *Controller {
	return &Controller{
		uploader: uploader,
		ledger:   ledger,
		draft:    newDraftClient(httpClient, overrides),
	}
}

// GenerateImage implements generate_image: text-to-image, or multi-image
// when the request's count (explicit or prompt-detected) calls for it.
func (c *Controller) GenerateImage(ctx context.Context, cred upstream.Credential, in Input, onProgress poller.ProgressFunc) ([]string, error) {
	mode := payload.ModeText2Img
	if count, isMulti := payload.DetectMultiImageCount(in.Count, in.Prompt); isMulti {
		mode = payload.ModeMultiImg
		in.Count = count
	}
	return c.generate(ctx, cred, mode, quota.ServiceImage, in, onProgress)
}

// GenerateImageComposition implements generate_image_composition:
// image-to-image blending of one or more uploaded source images.
func (c *Controller) GenerateImageComposition(ctx context.Context, cred upstream.Credential, in Input, onProgress poller.ProgressFunc) ([]string, error) {
	return c.generate(ctx, cred, payload.ModeImg2Img, quota.ServiceImage, in, onProgress)
}

// GenerateVideo implements generate_video: image-to-video from one or more
// uploaded source images.
func (c *Controller) GenerateVideo(ctx context.Context, cred upstream.Credential, in Input, onProgress poller.ProgressFunc) ([]string, error) {
	return c.generate(ctx, cred, payload.ModeImg2Video, quota.ServiceVideo, in, onProgress)
}

func (c *Controller) generate(ctx context.Context, cred upstream.Credential, mode payload.Mode, service quota.Service, in Input, onProgress poller.ProgressFunc) ([]string, error) {
	if err := validate(mode, in); err != nil {
		return nil, err
	}

	region := cred.Region()
	resolved, err := resolveModel(region, in.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, in.Model)
	}

	sessionID := cred.SessionID()
	check, err := c.ledger.Check(ctx, sessionID, service)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, quota.ErrQuotaExceeded
	}

	var assets []upload.Asset
	if len(in.Images) > 0 {
		assets, err = c.uploader.UploadAll(ctx, cred, in.Images)
		if err != nil {
			return nil, err
		}
	}

	ratio := in.Ratio
	if len(assets) > 0 && assets[0].Width > 0 && assets[0].Height > 0 {
		ratio = fmt.Sprintf("%d:%d", assets[0].Width, assets[0].Height)
	}
	resolution := payload.ResolveResolution(resolved.Entry, ratio, in.ResolutionTier)

	uris := make([]string, len(assets))
	for i, a := range assets {
		uris[i] = a.StoreURI
	}

	req := payload.Request{
		Model:             resolved.ModelID,
		UpstreamModel:     resolved.Entry.UpstreamCode,
		Mode:              mode,
		Prompt:            in.Prompt,
		NegativePrompt:    in.NegativePrompt,
		Region:            region,
		Resolution:        resolution,
		SampleStrength:    in.SampleStrength,
		Seed:              in.Seed,
		UploadedImageURIs: uris,
		IntelligentRatio:  len(assets) > 0,
		Count:             in.Count,
		DurationSeconds:   in.DurationSeconds,
		SubmitID:          uuid.NewString(),
		ComponentID:       uuid.NewString(),
	}
	env := payload.Build(req)

	historyID, err := c.draft.submit(ctx, cred, env)
	if err != nil {
		return nil, err
	}

	expected := expectedItemCount(mode, in.Count)
	kind := poller.KindImage
	if mode == payload.ModeImg2Video {
		kind = poller.KindVideo
	}

	fetch := func(fctx context.Context) (poller.Status, interface{}, error) {
		rec, err := c.draft.fetchHistory(fctx, cred, historyID)
		if err != nil {
			return poller.Status{}, nil, err
		}
		return toPollerStatus(rec), rec.ItemList, nil
	}

	result, err := poller.Run(ctx, poller.Config{
		Kind:          kind,
		ExpectedItems: expected,
		OnProgress:    onProgress,
	}, fetch)
	if err != nil {
		return nil, err
	}

	items, _ := result.Data.([]historyItem)
	urls := extractAssetURLs(items)
	if len(items) > 0 && len(urls) == 0 {
		return nil, ErrResultExtractionFailed
	}

	if err := c.ledger.Increment(ctx, sessionID, service); err != nil {
		log.Warn().Str("session_id", sessionID).Str("service", string(service)).Err(err).
			Msg("quota increment failed after successful generation; result still returned")
	}

	return urls, nil
}

func validate(mode payload.Mode, in Input) error {
	if in.Prompt == "" {
		return fmt.Errorf("%w: prompt is required", ErrInvalidRequest)
	}
	if (mode == payload.ModeImg2Img || mode == payload.ModeImg2Video) && len(in.Images) == 0 {
		return fmt.Errorf("%w: at least one source image is required", ErrInvalidRequest)
	}
	return nil
}
