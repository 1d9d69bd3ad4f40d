//go:build linux

package wallpaper

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dixieflatline76/BingWall/util/log"
	"github.com/godbus/dbus/v5"
)

type desktop int

const (
	desktopUnknown desktop = iota
	desktopGNOME
	desktopKDE
	desktopXFCE
	desktopSway
)

func (d desktop) String() string {
	switch d {
	case desktopGNOME:
		return "gnome"
	case desktopKDE:
		return "kde"
	case desktopXFCE:
		return "xfce"
	case desktopSway:
		return "sway"
	default:
		return "unknown"
	}
}

// detectDesktop maps the session environment to a supported desktop.
func detectDesktop(getenv func(string) string) (desktop, string) {
	env := getenv("XDG_CURRENT_DESKTOP")
	if env == "" {
		env = getenv("DESKTOP_SESSION")
	}
	env = strings.ToLower(env)

	switch {
	case strings.Contains(env, "gnome"), strings.Contains(env, "unity"),
		strings.Contains(env, "cinnamon"), strings.Contains(env, "mutter"):
		return desktopGNOME, env
	case strings.Contains(env, "kde"), strings.Contains(env, "plasma"):
		return desktopKDE, env
	case strings.Contains(env, "xfce"):
		return desktopXFCE, env
	case strings.Contains(env, "sway"), getenv("SWAYSOCK") != "":
		return desktopSway, env
	default:
		return desktopUnknown, env
	}
}

// linuxOS sets the wallpaper on the common Linux desktops.
type linuxOS struct {
	mu     sync.Mutex
	swaybg *exec.Cmd
}

func getOS() Setter {
	return &linuxOS{}
}

// SetWallpaper sets the desktop wallpaper for the detected desktop environment.
func (l *linuxOS) SetWallpaper(imagePath string) error {
	d, env := detectDesktop(os.Getenv)
	log.Debugf("Setting wallpaper on %s desktop (%q)", d, env)

	switch d {
	case desktopGNOME:
		return l.setWallpaperGNOME(imagePath)
	case desktopKDE:
		return l.setWallpaperKDE(imagePath)
	case desktopXFCE:
		return l.setWallpaperXFCE(imagePath)
	case desktopSway:
		return l.setWallpaperSway(imagePath)
	default:
		return fmt.Errorf("unsupported desktop environment: %q", env)
	}
}

// setWallpaperGNOME sets both the light and dark variants used by recent GNOME releases.
func (l *linuxOS) setWallpaperGNOME(imagePath string) error {
	uri := "file://" + imagePath
	if out, err := exec.Command("gsettings", "set", "org.gnome.desktop.background", "picture-uri", uri).CombinedOutput(); err != nil {
		return fmt.Errorf("gsettings failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	// Older releases lack the dark key
	if err := exec.Command("gsettings", "set", "org.gnome.desktop.background", "picture-uri-dark", uri).Run(); err != nil {
		log.Debugf("gsettings picture-uri-dark not applied: %v", err)
	}
	return nil
}

const kdeScript = `var allDesktops = desktops();
for (var i = 0; i < allDesktops.length; i++) {
    var d = allDesktops[i];
    d.wallpaperPlugin = "org.kde.image";
    d.currentConfigGroup = Array("Wallpaper", "org.kde.image", "General");
    d.writeConfig("Image", "file://%s");
}`

// setWallpaperKDE asks plasmashell over the session bus to update every desktop.
func (l *linuxOS) setWallpaperKDE(imagePath string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	script := fmt.Sprintf(kdeScript, strings.ReplaceAll(imagePath, `"`, `\"`))
	obj := conn.Object("org.kde.plasmashell", "/PlasmaShell")
	if call := obj.Call("org.kde.PlasmaShell.evaluateScript", 0, script); call.Err != nil {
		return fmt.Errorf("plasmashell evaluateScript failed: %w", call.Err)
	}
	return nil
}

// setWallpaperXFCE updates every last-image property of the xfce4-desktop channel.
func (l *linuxOS) setWallpaperXFCE(imagePath string) error {
	if _, err := l.getXFCEDesktopConfigFile(); err != nil {
		return err
	}

	out, err := exec.Command("xfconf-query", "--channel", "xfce4-desktop", "--list").Output()
	if err != nil {
		return fmt.Errorf("xfconf-query list failed: %w", err)
	}

	props := []string{}
	for _, p := range strings.Fields(string(out)) {
		if strings.HasSuffix(p, "/last-image") {
			props = append(props, p)
		}
	}
	if len(props) == 0 {
		props = append(props, "/backdrop/screen0/monitor0/workspace0/last-image")
	}

	for _, p := range props {
		cmd := exec.Command("xfconf-query", "--channel", "xfce4-desktop", "--property", p, "--set", imagePath)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("xfconf-query set %s failed: %w", p, err)
		}
	}
	return nil
}

// getXFCEDesktopConfigFile retrieves the path to the XFCE desktop configuration file.
func (l *linuxOS) getXFCEDesktopConfigFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	defaultConfigFile := filepath.Join(home, ".config", "xfce4", "xfconf", "xfce-perchannel-xml", "xfce4-desktop.xml")
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}

	return "", fmt.Errorf("could not find XFCE desktop configuration file")
}

// setWallpaperSway replaces the running swaybg instance, which must stay alive to show the image.
func (l *linuxOS) setWallpaperSway(imagePath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cmd := exec.Command("swaybg", "--image", imagePath, "--mode", "fill")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start swaybg: %w", err)
	}
	go func() { _ = cmd.Wait() }()

	if l.swaybg != nil && l.swaybg.Process != nil {
		_ = l.swaybg.Process.Kill()
	}
	l.swaybg = cmd
	return nil
}
