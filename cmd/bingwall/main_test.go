package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dixieflatline76/BingWall/config"
	"github.com/dixieflatline76/BingWall/pkg/wallpaper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type appResult struct {
	out      string
	exitCode int
	err      error
}

func runApp(t *testing.T, args ...string) appResult {
	t.Helper()
	var buf bytes.Buffer
	res := appResult{}

	app := newApp()
	app.Writer = &buf
	app.ExitErrHandler = func(_ *cli.Context, err error) {
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			res.exitCode = ec.ExitCode()
		}
	}

	res.err = app.RunContext(context.Background(), append([]string{"bingwall"}, args...))
	res.out = buf.String()
	return res
}

func stubSetter(t *testing.T) *[]string {
	t.Helper()
	var applied []string
	orig := newSetter
	newSetter = func() wallpaper.Setter {
		return wallpaper.SetterFunc(func(path string) error {
			applied = append(applied, path)
			return nil
		})
	}
	t.Cleanup(func() { newSetter = orig })
	return &applied
}

func imageServer(t *testing.T, metadata string) *httptest.Server {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, jpeg.Encode(&img, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/HPImageArchive.aspx":
			_, _ = w.Write([]byte(metadata))
		case r.URL.Path == "/th" && r.URL.Query().Get("id") == "OHR.Foo_1920x1200.jpg":
			_, _ = w.Write(img.Bytes())
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func writeConfig(t *testing.T, serverURL, outDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	content := fmt.Sprintf(`
[download]
server = "custom"
custom_server = %q
size_mode = "highest"
output_folder = %q

[settings]
interval = 2
`, serverURL, outDir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", config.ConfigFileName)

	res := runApp(t, "--config", path, "init-config")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, path)
	assert.FileExists(t, path)

	res = runApp(t, "--config", path, "init-config")
	assert.Error(t, res.err)

	res = runApp(t, "--config", path, "init-config", "--force")
	assert.NoError(t, res.err)
}

func TestOnceAppliesWallpaper(t *testing.T) {
	applied := stubSetter(t)
	ts := imageServer(t, `{"images":[{"enddate":"20240102","urlbase":"/th?id=OHR.Foo","url":"/th?id=OHR.Foo_1920x1080.jpg","wp":true}]}`)
	outDir := t.TempDir()
	path := writeConfig(t, ts.URL, outDir)

	res := runApp(t, "--config", path, "--log-level", "error", "once")
	require.NoError(t, res.err)

	want := filepath.Join(outDir, "20240102_1920x1200.jpg")
	assert.Equal(t, want, strings.TrimSpace(res.out))
	assert.Equal(t, []string{want}, *applied)
	assert.FileExists(t, want)
}

func TestOnceExitCodeWhenNothingApplied(t *testing.T) {
	applied := stubSetter(t)
	ts := imageServer(t, "null")
	path := writeConfig(t, ts.URL, t.TempDir())

	res := runApp(t, "--config", path, "--log-level", "critical", "once")
	assert.Error(t, res.err)
	assert.Equal(t, 1, res.exitCode)
	assert.Empty(t, *applied)
}

func TestInvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	res := runApp(t, "--config", path, "--log-level", "chatty", "once")
	assert.ErrorContains(t, res.err, "unknown log level")
}

func TestRunHonorsAutostart(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[settings]\nautostart = false\n"), 0644))

	res := runApp(t, "--config", path, "run")
	assert.NoError(t, res.err)
}
