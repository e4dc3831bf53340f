package generation

import "errors"

var (
	// ErrInvalidRequest covers malformed input the controller catches before
	// ever resolving a model or touching quota (missing prompt, bad image
	// count for the mode).
	ErrInvalidRequest = errors.New("generation: invalid request")

	// ErrUnsupportedModel is returned when the requested model is not
	// available in the credential's region and is not another region's
	// default (the one case that triggers silent substitution).
	ErrUnsupportedModel = errors.New("generation: unsupported model for region")

	// ErrUpstreamProtocol is returned when the generate call's response is
	// missing history_record_id.
	ErrUpstreamProtocol = errors.New("generation: malformed upstream response")

	// ErrResultExtractionFailed is returned when item_list is present but no
	// asset URL could be extracted from any entry.
	ErrResultExtractionFailed = errors.New("generation: could not extract asset urls from result")
)
