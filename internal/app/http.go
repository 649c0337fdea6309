package app

import (
	"net"
	"net/http"
	"time"
)

// defaultLLMTimeout bounds a single completion request. Long sections on a
// local model can take minutes.
const defaultLLMTimeout = 5 * time.Minute

// newLLMHTTPClient returns an HTTP client for the model endpoint. Calls are
// sequential, so the pool stays small; the overall timeout is what matters.
func newLLMHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
