package bing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dixieflatline76/BingWall/config"
	"github.com/dixieflatline76/BingWall/pkg/provider"
	"github.com/dixieflatline76/BingWall/util/log"
)

var marketRegexp = regexp.MustCompile(BingMarketRegexp)

// ImageMetadata describes the image of the day as published by the archive API.
type ImageMetadata struct {
	EndDate           string // Day identifier, used as filename prefix
	URLBase           string // Path stem shared by all resolution variants
	FallbackURL       string // Default resolution image
	SupportsWidePaper bool   // A 1920x1200 variant exists
	Copyright         string
	Title             string
}

type archiveResponse struct {
	Images []archiveImage `json:"images"`
}

type archiveImage struct {
	EndDate   string          `json:"enddate"`
	URLBase   string          `json:"urlbase"`
	URL       string          `json:"url"`
	WP        json.RawMessage `json:"wp"`
	Copyright string          `json:"copyright"`
	Title     string          `json:"title"`
}

// widePaper reports whether wp is the JSON literal true. Any other value means false.
func (img archiveImage) widePaper() bool {
	return bytes.Equal(bytes.TrimSpace(img.WP), []byte("true"))
}

// Provider implements provider.ImageProvider for the Bing image archive.
type Provider struct {
	fetcher    provider.Fetcher
	baseURL    string
	requestURL string
	policy     ResolutionPolicy
}

// NewProvider creates a provider for baseURL. A non-empty market must look like "en-US"
// and takes precedence over the country code.
func NewProvider(fetcher provider.Fetcher, baseURL, country, market string, policy ResolutionPolicy) (*Provider, error) {
	requestURL, err := BuildRequestURL(baseURL, BingImageAPI, country, market)
	if err != nil {
		return nil, err
	}
	return &Provider{
		fetcher:    fetcher,
		baseURL:    baseURL,
		requestURL: requestURL,
		policy:     policy,
	}, nil
}

// NewFromConfig creates a provider from the download section of cfg.
func NewFromConfig(cfg *config.Config, fetcher provider.Fetcher) (*Provider, error) {
	policy, err := ParsePolicy(cfg.Download.SizeMode, cfg.Download.ImageSize)
	if err != nil {
		return nil, err
	}
	return NewProvider(fetcher, cfg.BaseURL(), cfg.CountryCode(), cfg.MarketCode(), policy)
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "Bing"
}

// RequestURL returns the metadata URL queried on every fetch.
func (p *Provider) RequestURL() string {
	return p.requestURL
}

// Policy returns the resolution policy in use.
func (p *Provider) Policy() ResolutionPolicy {
	return p.policy
}

// BuildRequestURL joins base and api and appends at most one locale parameter.
func BuildRequestURL(base, api, country, market string) (string, error) {
	u, err := joinURL(base, api)
	if err != nil {
		return "", err
	}

	switch {
	case market != "":
		if !marketRegexp.MatchString(market) {
			return "", &provider.ValidationError{Field: "market", Value: market, Err: ErrInvalidMarket}
		}
		u += "&mkt=" + market
	case country != "":
		u += "&cc=" + country
	}
	return u, nil
}

// FetchMetadata loads and parses today's metadata.
// Any failure is reported as provider.ErrMetadataUnavailable.
func (p *Provider) FetchMetadata(ctx context.Context) (ImageMetadata, error) {
	log.Printf("Bing: loading from %s", p.requestURL)
	raw := p.fetcher.Fetch(ctx, p.requestURL, nil, false)
	if len(raw) == 0 {
		return ImageMetadata{}, fmt.Errorf("%w: no data from %s", provider.ErrMetadataUnavailable, p.requestURL)
	}
	log.Printf("Bing: %d bytes loaded", len(raw))

	return ParseMetadata(raw)
}

// ParseMetadata decodes an archive response and returns its first image.
func ParseMetadata(raw []byte) (ImageMetadata, error) {
	if !utf8.Valid(raw) {
		log.Dumpf("Bing: response is not valid UTF-8: %q", raw)
		return ImageMetadata{}, fmt.Errorf("%w: response is not valid UTF-8", provider.ErrMetadataUnavailable)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ImageMetadata{}, fmt.Errorf("%w: empty response", provider.ErrMetadataUnavailable)
	}

	var resp archiveResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		log.Dumpf("Bing: malformed response: %s", trimmed)
		return ImageMetadata{}, fmt.Errorf("%w: malformed response: %v", provider.ErrMetadataUnavailable, err)
	}

	// Covers "null", "{}" and an empty images array
	if len(resp.Images) == 0 {
		log.Dumpf("Bing: response without images: %s", trimmed)
		return ImageMetadata{}, fmt.Errorf("%w: response has no images", provider.ErrMetadataUnavailable)
	}
	log.Dumpf("Bing: response: %s", trimmed)

	img := resp.Images[0]
	var missing []string
	if img.EndDate == "" {
		missing = append(missing, "enddate")
	}
	if img.URLBase == "" {
		missing = append(missing, "urlbase")
	}
	if img.URL == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return ImageMetadata{}, fmt.Errorf("%w: image entry missing %s", provider.ErrMetadataUnavailable, strings.Join(missing, ", "))
	}

	return ImageMetadata{
		EndDate:           img.EndDate,
		URLBase:           img.URLBase,
		FallbackURL:       img.URL,
		SupportsWidePaper: img.widePaper(),
		Copyright:         img.Copyright,
		Title:             img.Title,
	}, nil
}

// FetchImage fetches today's metadata and resolves the download URL with the provider's policy.
func (p *Provider) FetchImage(ctx context.Context) (provider.Image, error) {
	meta, err := p.FetchMetadata(ctx)
	if err != nil {
		return provider.Image{}, err
	}
	log.Debugf("Bing: handling %s, base=%s, urlbase=%s, wp=%v, policy=%s",
		meta.FallbackURL, p.baseURL, meta.URLBase, meta.SupportsWidePaper, p.policy)

	link, err := SelectURL(p.policy, meta, p.baseURL)
	if err != nil {
		return provider.Image{}, err
	}
	log.Printf("Bing: link to be downloaded: %s", link)

	return provider.Image{
		ID:          meta.EndDate,
		Path:        link,
		Attribution: meta.Copyright,
		Title:       meta.Title,
		Provider:    p.Name(),
	}, nil
}
