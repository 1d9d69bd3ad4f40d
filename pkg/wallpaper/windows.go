//go:build windows

package wallpaper

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	systemParametersInfo = user32.NewProc("SystemParametersInfoW")
)

// Windows API constants (defined manually)
const (
	SPISetDeskWallpaper = 0x0014
	SPIFUpdateIniFile   = 0x01
	SPIFSendChange      = 0x02
)

// windowsOS sets the wallpaper through user32.
type windowsOS struct{}

func getOS() Setter {
	return &windowsOS{}
}

// SetWallpaper sets the wallpaper to the given image file path.
func (w *windowsOS) SetWallpaper(imagePath string) error {
	if err := systemParametersInfo.Find(); err != nil {
		return fmt.Errorf("SystemParametersInfoW unavailable: %w", err)
	}

	imagePathUTF16, err := windows.UTF16PtrFromString(imagePath)
	if err != nil {
		return err
	}

	ret, _, err := systemParametersInfo.Call(
		uintptr(SPISetDeskWallpaper),
		uintptr(0),
		uintptr(unsafe.Pointer(imagePathUTF16)),
		uintptr(SPIFUpdateIniFile|SPIFSendChange),
	)
	if ret == 0 {
		return fmt.Errorf("SystemParametersInfoW failed: %w", err)
	}

	return nil
}
