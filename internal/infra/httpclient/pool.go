package httpclient

import (
	"net/http"
	"time"
)

// sharedTransport is reused across all pooled clients to maximize
// connection reuse. Both Azure endpoints sit behind TLS, so a fresh
// handshake per request adds measurable latency under chat load.
var sharedTransport = &http.Transport{
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     120 * time.Second,
	DisableKeepAlives:   false,
}

// NewPooledClient creates an http.Client that shares a connection pool
// with other pooled clients while keeping its own request timeout.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}
