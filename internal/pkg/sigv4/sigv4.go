// Package sigv4 signs outbound requests to the upstream's AWS-SigV4-
// compatible blob store endpoints (ApplyImageUpload / CommitImageUpload)
// using the temporary credentials issued by the upstream's own
// get_upload_token call. It wraps aws-sdk-go-v2's signer rather than
// hand-rolling HMAC-SHA256 canonical-request construction, the same SDK
// family the teacher already depends on for its R2/S3 client.
package sigv4

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// emptyBodySHA256 is the canonical hash of an empty body, used for signed
// GET requests (the Apply step has none).
var emptyBodySHA256 = hex.EncodeToString(sha256.New().Sum(nil))

// Credentials are the temporary access/secret/session triple returned by
// the upstream's get_upload_token endpoint.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

func (c Credentials) toAWS() aws.Credentials {
	return aws.Credentials{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
	}
}

// Signer signs requests for a single AWS-style service/region pair.
type Signer struct {
	service string
	region  string
	inner   *v4.Signer
}

// NewSigner builds a Signer for the given service id (e.g. "imagex") and
// signing region (e.g. "cn-north-1").
func NewSigner(service, region string) *Signer {
	return &Signer{
		service: service,
		region:  region,
		inner:   v4.NewSigner(),
	}
}

// SignGET signs an empty-body GET request in place, adding
// Authorization, X-Amz-Date and X-Amz-Security-Token headers.
func (s *Signer) SignGET(ctx context.Context, req *http.Request, creds Credentials) error {
	return s.sign(ctx, req, emptyBodySHA256, creds)
}

// SignPOST signs a POST request over its raw body bytes, which it hashes
// with SHA-256 to form the payload hash.
func (s *Signer) SignPOST(ctx context.Context, req *http.Request, body []byte, creds Credentials) error {
	sum := sha256.Sum256(body)
	return s.sign(ctx, req, hex.EncodeToString(sum[:]), creds)
}

func (s *Signer) sign(ctx context.Context, req *http.Request, payloadHash string, creds Credentials) error {
	signTime := time.Now().UTC()
	req.Header.Set("X-Amz-Date", signTime.Format("20060102T150405Z"))
	if creds.SessionToken != "" {
		req.Header.Set("X-Amz-Security-Token", creds.SessionToken)
	}

	return s.inner.SignHTTP(ctx, creds.toAWS(), req, payloadHash, s.service, s.region, signTime)
}
