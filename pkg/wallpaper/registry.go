package wallpaper

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dixieflatline76/BingWall/config"
	"github.com/dixieflatline76/BingWall/pkg/provider"
)

// ProviderFactory builds the image provider for a configuration.
// Misconfiguration must be reported as a *provider.ValidationError.
type ProviderFactory func(cfg *config.Config, fetcher provider.Fetcher) (provider.ImageProvider, error)

var (
	registryMu       sync.RWMutex
	providerRegistry = make(map[string]ProviderFactory)
)

// RegisterProvider registers a new image provider factory. Providers call it from init.
func RegisterProvider(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	providerRegistry[strings.ToLower(name)] = factory
}

// GetRegisteredProviders returns the names of all registered providers, sorted.
func GetRegisteredProviders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupProvider returns the factory registered under name.
func LookupProvider(name string) (ProviderFactory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := providerRegistry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown image provider %q", name)
	}
	return factory, nil
}
