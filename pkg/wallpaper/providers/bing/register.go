package bing

import (
	"github.com/dixieflatline76/BingWall/config"
	"github.com/dixieflatline76/BingWall/pkg/provider"
	"github.com/dixieflatline76/BingWall/pkg/wallpaper"
)

// ProviderName is the registry key of the Bing provider.
const ProviderName = "bing"

func init() {
	wallpaper.RegisterProvider(ProviderName, func(cfg *config.Config, fetcher provider.Fetcher) (provider.ImageProvider, error) {
		p, err := NewFromConfig(cfg, fetcher)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}
