package backend

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient creates an HTTP client tuned for the Academy API.
// Judge executions compile and run code remotely, so the overall
// timeout is generous; connection setup stays tight.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		MaxConnsPerHost:       10,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   90 * time.Second,
		Transport: transport,
	}
}
