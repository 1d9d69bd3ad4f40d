package bing

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/dixieflatline76/BingWall/config"
	"github.com/dixieflatline76/BingWall/pkg/provider"
	"github.com/dixieflatline76/BingWall/util/log"
)

// Validation causes, wrapped in a provider.ValidationError.
var (
	ErrInvalidMarket           = errors.New("market code must look like xx-XX")
	ErrInvalidResolutionFormat = errors.New("resolution must look like WIDTHxHEIGHT")
	ErrUnknownSizeMode         = errors.New("size mode must be normal, highest or manual")
)

var resolutionRegexp = regexp.MustCompile(BingResolutionRegexp)

// SizeMode identifies a resolution policy variant.
type SizeMode int

// SizeMode variants
const (
	Fixed SizeMode = iota
	Highest
	Manual
)

func (m SizeMode) String() string {
	switch m {
	case Fixed:
		return config.SizeModeNormal
	case Highest:
		return config.SizeModeHighest
	case Manual:
		return config.SizeModeManual
	default:
		return "unknown"
	}
}

// ResolutionPolicy decides which resolution variant of the daily image to download.
// It is built once per configuration and never mutated.
type ResolutionPolicy struct {
	mode       SizeMode
	resolution string
}

// FixedPolicy always downloads the default image the service links to.
func FixedPolicy() ResolutionPolicy {
	return ResolutionPolicy{mode: Fixed}
}

// HighestPolicy downloads the widescreen variant when one exists, full HD otherwise.
func HighestPolicy() ResolutionPolicy {
	return ResolutionPolicy{mode: Highest}
}

// ManualPolicy downloads the given WIDTHxHEIGHT variant. The format is checked by SelectURL.
func ManualPolicy(resolution string) ResolutionPolicy {
	return ResolutionPolicy{mode: Manual, resolution: resolution}
}

// ParsePolicy maps the size_mode and image_size settings to a policy.
// A blank mode means normal.
func ParsePolicy(mode, resolution string) (ResolutionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", config.SizeModeNormal:
		return FixedPolicy(), nil
	case config.SizeModeHighest:
		return HighestPolicy(), nil
	case config.SizeModeManual:
		return ManualPolicy(strings.TrimSpace(resolution)), nil
	default:
		return ResolutionPolicy{}, &provider.ValidationError{Field: "size_mode", Value: mode, Err: ErrUnknownSizeMode}
	}
}

// Mode returns the policy variant.
func (p ResolutionPolicy) Mode() SizeMode {
	return p.mode
}

// Resolution returns the manual resolution, empty for other variants.
func (p ResolutionPolicy) Resolution() string {
	return p.resolution
}

func (p ResolutionPolicy) String() string {
	if p.mode == Manual {
		return fmt.Sprintf("%s(%s)", p.mode, p.resolution)
	}
	return p.mode.String()
}

// SelectURL builds the absolute image URL for meta under the given policy.
// It must be evaluated per fetch since widescreen support changes from day to day.
func SelectURL(p ResolutionPolicy, meta ImageMetadata, baseURL string) (string, error) {
	var ref string
	switch p.mode {
	case Highest:
		if meta.SupportsWidePaper {
			ref = meta.URLBase + "_" + WidePaperSuffix
			log.Debugf("Bing: image supports wallpaper size, using %s", WidePaperSuffix)
		} else {
			ref = meta.URLBase + "_" + FullHDSuffix
			log.Debugf("Bing: no wallpaper size available, using %s", FullHDSuffix)
		}
	case Manual:
		if !resolutionRegexp.MatchString(p.resolution) {
			return "", &provider.ValidationError{Field: "image_size", Value: p.resolution, Err: ErrInvalidResolutionFormat}
		}
		ref = meta.URLBase + "_" + p.resolution + ".jpg"
	default:
		ref = meta.FallbackURL
	}

	link, err := joinURL(baseURL, ref)
	if err != nil {
		return "", err
	}
	log.Debugf("Bing: %s resolution selected %s", p, link)
	return link, nil
}

// joinURL resolves ref against base the way a browser resolves a link.
func joinURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", &provider.ValidationError{Field: "server", Value: base, Err: err}
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: bad image reference %q: %v", provider.ErrMetadataUnavailable, ref, err)
	}
	return b.ResolveReference(r).String(), nil
}
