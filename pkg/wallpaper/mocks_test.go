package wallpaper

import (
	"context"
	"errors"
	"sync"

	"github.com/dixieflatline76/BingWall/config"
	"github.com/dixieflatline76/BingWall/pkg/provider"
	"github.com/dixieflatline76/BingWall/util"
)

// fakeFetcher serves canned bodies by URL and records every call.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string][]byte
	calls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{bodies: map[string][]byte{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, _ map[string]string, _ bool) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	return f.bodies[url]
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeProvider returns a fixed image or error.
type fakeProvider struct {
	mu    sync.Mutex
	img   provider.Image
	err   error
	panic bool
	calls int
}

func (p *fakeProvider) Name() string { return "Fake" }

func (p *fakeProvider) FetchImage(_ context.Context) (provider.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.panic {
		panic("provider exploded")
	}
	return p.img, p.err
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// blockingProvider signals entered and waits for release before failing with metadata unavailable.
type blockingProvider struct {
	entered chan struct{}
	release chan struct{}
	calls   util.SafeCounter
}

func (p *blockingProvider) Name() string { return "Blocking" }

func (p *blockingProvider) FetchImage(_ context.Context) (provider.Image, error) {
	p.calls.Increment()
	select {
	case p.entered <- struct{}{}:
	default:
	}
	<-p.release
	return provider.Image{}, provider.ErrMetadataUnavailable
}

func (p *blockingProvider) Calls() int { return p.calls.Value() }

// recordingSetter records the paths it is asked to apply.
type recordingSetter struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (s *recordingSetter) SetWallpaper(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
	return s.err
}

func (s *recordingSetter) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func staticConfig(cfg *config.Config) ConfigLoader {
	return func() (*config.Config, error) { return cfg, nil }
}

func fixedProvider(p provider.ImageProvider) ProviderFactory {
	return func(*config.Config, provider.Fetcher) (provider.ImageProvider, error) { return p, nil }
}

var errBoom = errors.New("boom")
