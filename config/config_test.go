package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/BingWall/pkg/provider"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, GlobalBaseURL, cfg.BaseURL())
	assert.Equal(t, "", cfg.CountryCode())
	assert.Equal(t, "", cfg.MarketCode())
	assert.Equal(t, SizeModeNormal, cfg.Download.SizeMode)
	assert.Equal(t, time.Hour, cfg.Interval())
	assert.True(t, cfg.Settings.Autostart)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `
[download]
country = "de"
market = "en-GB"
server = "china"
size_mode = "manual"
image_size = "1366x768"
output_folder = "pics"

[settings]
interval = 6
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "de", cfg.CountryCode())
	assert.Equal(t, "en-GB", cfg.MarketCode())
	assert.Equal(t, ChinaBaseURL, cfg.BaseURL())
	assert.Equal(t, "1366x768", cfg.Download.ImageSize)
	assert.Equal(t, 6*time.Hour, cfg.Interval())

	dir, collect := cfg.OutputDir()
	assert.True(t, collect)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "pics", filepath.Base(dir))
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[download\nbroken"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"MARKET", "ja-JP")
	t.Setenv(EnvPrefix+"INTERVAL", "3")
	t.Setenv(EnvPrefix+"SIZE_MODE", SizeModeHighest)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ja-JP", cfg.MarketCode())
	assert.Equal(t, 3, cfg.IntervalHours())
	assert.Equal(t, SizeModeHighest, cfg.Download.SizeMode)
}

func TestEnvOverrideInvalidInterval(t *testing.T) {
	t.Setenv(EnvPrefix+"INTERVAL", "often")

	_, err := Load("")
	assert.Error(t, err)
	assert.True(t, provider.IsValidation(err))
}

func TestEnvOverrideIntervalTrimmed(t *testing.T) {
	t.Setenv(EnvPrefix+"INTERVAL", " 6 ")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.IntervalHours())
}

func TestLoadUnknownServerKeepsInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[download]\nserver = \"moon\"\n[settings]\ninterval = 12\n"), 0644))

	cfg, err := Load(path)
	require.Error(t, err)
	assert.True(t, provider.IsValidation(err))
	require.NotNil(t, cfg)
	assert.Equal(t, 12*time.Hour, cfg.Interval())
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name     string
		server   string
		custom   string
		hasError bool
		baseURL  string
	}{
		{"global", ServerGlobal, "", false, GlobalBaseURL},
		{"blank defaults to global", "", "", false, GlobalBaseURL},
		{"china", "China", "", false, ChinaBaseURL},
		{"padded china", " china\t", "", false, ChinaBaseURL},
		{"custom", ServerCustom, " http://mirror.example ", false, "http://mirror.example"},
		{"custom without url", ServerCustom, "", true, ""},
		{"unknown", "moon", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Download.Server = tt.server
			cfg.Download.CustomServer = tt.custom

			err := cfg.Validate()
			if tt.hasError {
				assert.True(t, provider.IsValidation(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.baseURL, cfg.BaseURL())
		})
	}
}

func TestIntervalClamp(t *testing.T) {
	cfg := Default()
	for _, v := range []int{-5, 0, 1} {
		cfg.Settings.Interval = v
		assert.Equal(t, 1, cfg.IntervalHours(), "interval %d", v)
	}
	cfg.Settings.Interval = 24
	assert.Equal(t, 24*time.Hour, cfg.Interval())
}

func TestOutputDirBlankIsNoCollect(t *testing.T) {
	cfg := Default()
	cfg.Download.OutputFolder = "  "

	dir, collect := cfg.OutputDir()
	assert.False(t, collect)
	assert.Equal(t, filepath.Join(os.TempDir(), TempDirName), dir)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg := Default()
	cfg.Download.Market = "fr-FR"
	cfg.Settings.Interval = 12
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fr-FR", loaded.MarketCode())
	assert.Equal(t, 12, loaded.IntervalHours())
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	require.NoError(t, WriteDefault(path, false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# BingWall configuration.")
	assert.Contains(t, string(data), "[download]")

	assert.Error(t, WriteDefault(path, false))
	assert.NoError(t, WriteDefault(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Download, cfg.Download)
}
