package wallpaper

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/dixieflatline76/BingWall/util/log"
	"golang.org/x/time/rate"
)

// UserAgentTransport wraps an http.RoundTripper and adds a User-Agent header
// unless the request already carries one.
type UserAgentTransport struct {
	http.RoundTripper
	UserAgent string
}

// RoundTrip executes a single HTTP transaction, adding the User-Agent header.
func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.RoundTripper.RoundTrip(req)
	}
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("User-Agent", t.UserAgent)
	return t.RoundTripper.RoundTrip(clonedReq)
}

// NewHTTPClient returns a client with the timeouts used for every outbound call.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: HTTPClientRequestTimeout,
		Transport: &UserAgentTransport{
			RoundTripper: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   HTTPClientDialerTimeout,
					KeepAlive: HTTPClientKeepAlive,
				}).DialContext,
				ResponseHeaderTimeout: HTTPClientResponseHeaderTimeout,
				TLSHandshakeTimeout:   HTTPClientTLSHandshakeTimeout,
			},
			UserAgent: DefaultUserAgent,
		},
	}
}

// HTTPFetcher is the raw fetch primitive shared by the metadata fetcher and the downloader.
// It implements provider.Fetcher.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	metrics *Metrics
}

// NewHTTPFetcher creates a fetcher. A nil client selects NewHTTPClient(); any other
// client is copied with its transport wrapped in a UserAgentTransport.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = NewHTTPClient()
	} else if _, ok := client.Transport.(*UserAgentTransport); !ok {
		base := client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *client
		wrapped.Transport = &UserAgentTransport{RoundTripper: base, UserAgent: DefaultUserAgent}
		client = &wrapped
	}
	return &HTTPFetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(FetchRatePerSecond), FetchBurst),
	}
}

// WithMetrics records downloaded bytes into m.
func (f *HTTPFetcher) WithMetrics(m *Metrics) *HTTPFetcher {
	f.metrics = m
	return f
}

// Fetch GETs url and returns the body, transparently gunzipped.
// It returns nil on any failure; failures are logged at error level unless optional.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers map[string]string, optional bool) []byte {
	data, err := f.fetch(ctx, url, headers)
	if err != nil {
		if optional {
			log.Debugf("Optional fetch of %s failed: %v", url, err)
		} else {
			log.Errorf("Error fetching %s: %v", url, err)
		}
		return nil
	}
	return data
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	if bytes.HasPrefix(data, gzipMagic) {
		data, err = gunzip(data)
		if err != nil {
			return nil, err
		}
	}

	if f.metrics != nil {
		f.metrics.DownloadBytes.Add(float64(len(data)))
	}
	return data, nil
}

var gzipMagic = []byte{0x1f, 0x8b, 0x08}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid gzip payload: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("invalid gzip payload: %w", err)
	}
	return out, nil
}
