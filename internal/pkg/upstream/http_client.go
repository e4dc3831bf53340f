package upstream

import (
	"net/http"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// NewHTTPClient builds the shared tuned http.Client every upstream-facing
// component (ImageHost, the generation submit/poll calls) reuses. Grounded
// on internal/pkg/photostudio/client.go's transport tuning, extended with
// an optional SOCKS5 DialContext in place of http.ProxyFromEnvironment.
func NewHTTPClient(proxyCfg ProxyConfig, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	dialContext, err := NewDialContext(proxyCfg)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext:           dialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
