//go:build darwin

package wallpaper

import (
	"fmt"
	"os/exec"
	"strings"
)

// macOSOS sets the wallpaper through AppleScript.
type macOSOS struct{}

func getOS() Setter {
	return &macOSOS{}
}

// appleScript returns the script that sets imagePath on every desktop.
func appleScript(imagePath string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(imagePath)
	return fmt.Sprintf(`tell application "System Events" to tell every desktop to set picture to POSIX file "%s"`, escaped)
}

// SetWallpaper sets the desktop wallpaper on macOS.
func (m *macOSOS) SetWallpaper(imagePath string) error {
	out, err := exec.Command("osascript", "-e", appleScript(imagePath)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to set wallpaper: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
