package wallpaper

import (
	"time"
)

// DefaultUserAgent is sent when the caller supplies none. The image service serves
// reduced content to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 6.1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/29.0.1521.3 Safari/537.36"

// Scheduling constants
const (
	RetryDelay      = 60 * time.Second // delay after a metadata failure
	ImageExt        = ".jpg"
	WIPSuffix       = ".wip" // partially written download
	TriggerDebounce = 2 * time.Second
)

// Outbound request throttling
const (
	FetchRatePerSecond = 1
	FetchBurst         = 4
)

// NetworkTimeouts defines the standard durations for various network operations.
const (
	// HTTPClientRequestTimeout is the total time limit for a single HTTP request,
	// including connection, redirects, and reading the response body.
	HTTPClientRequestTimeout = 60 * time.Second

	// HTTPClientDialerTimeout is the timeout for establishing a TCP connection.
	// This is the most critical timeout for handling network issues after sleep.
	HTTPClientDialerTimeout = 15 * time.Second

	// HTTPClientTLSHandshakeTimeout is the time limit for the TLS handshake for HTTPS.
	HTTPClientTLSHandshakeTimeout = 10 * time.Second

	// HTTPClientResponseHeaderTimeout is the time limit for receiving response headers
	// from the server after the request has been successfully sent.
	HTTPClientResponseHeaderTimeout = 15 * time.Second

	// HTTPClientKeepAlive is the duration for TCP keep-alive messages.
	HTTPClientKeepAlive = 30 * time.Second
)
