package wallpaper

// Setter applies an image file as the desktop wallpaper.
type Setter interface {
	SetWallpaper(path string) error
}

// SetterFunc adapts a plain function to the Setter interface.
type SetterFunc func(path string) error

// SetWallpaper calls f(path).
func (f SetterFunc) SetWallpaper(path string) error {
	return f(path)
}

// NewSetter returns the wallpaper setter for the running operating system.
func NewSetter() Setter {
	return getOS()
}
