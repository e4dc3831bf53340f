package upstream

import "errors"

// Error taxonomy for the upload pipeline, per spec.md §7.
var (
	ErrUploadNetwork       = errors.New("upload: network error")
	ErrUploadTimeout       = errors.New("upload: timed out")
	ErrUploadAuth          = errors.New("upload: token or signature rejected")
	ErrUploadCommitFailed  = errors.New("upload: commit returned non-2000 status")
	ErrUpstreamProtocol    = errors.New("upstream: malformed or missing response field")
)
