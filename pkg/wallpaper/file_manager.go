package wallpaper

import (
	"bytes"
	"errors"
	"fmt"
	_ "image/jpeg" // decoders for the integrity check
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dixieflatline76/BingWall/util/log"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// ErrNotAnImage is returned by Save when the downloaded bytes are not a decodable image.
var ErrNotAnImage = errors.New("downloaded data is not an image")

// FileManager handles all file system operations for downloaded wallpapers.
// In no-collect mode only the current image is kept in the directory.
type FileManager struct {
	dir     string
	collect bool
}

// NewFileManager creates a new FileManager for dir.
func NewFileManager(dir string, collect bool) *FileManager {
	return &FileManager{
		dir:     dir,
		collect: collect,
	}
}

// Dir returns the directory images are downloaded to.
func (fm *FileManager) Dir() string {
	return fm.dir
}

// Collect reports whether previous downloads are kept.
func (fm *FileManager) Collect() bool {
	return fm.collect
}

// Prepare creates the output directory and checks that it is usable.
func (fm *FileManager) Prepare() error {
	if err := os.MkdirAll(fm.dir, 0755); err != nil {
		return fmt.Errorf("can not create output folder %s: %w", fm.dir, err)
	}
	info, err := os.Stat(fm.dir)
	if err != nil {
		return fmt.Errorf("can not access output folder %s: %w", fm.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output folder %s is not a directory", fm.dir)
	}
	return nil
}

// TargetFilename derives the local filename for the image of day id served at link:
// id, an underscore and the text after the last underscore of link, cut at the query.
func TargetFilename(id, link string) string {
	segment := link
	if i := strings.LastIndex(segment, "_"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.IndexAny(segment, "&?#"); i >= 0 {
		segment = segment[:i]
	}
	segment = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return -1
		}
		return r
	}, segment)
	if !strings.EqualFold(filepath.Ext(segment), ImageExt) {
		segment += ImageExt
	}
	id = strings.NewReplacer("/", "", "\\", "", "..", "").Replace(id)
	return id + "_" + segment
}

// TargetPath returns the absolute path the image of day id is stored at.
func (fm *FileManager) TargetPath(id, link string) string {
	return filepath.Join(fm.dir, TargetFilename(id, link))
}

// Exists reports whether path is already on disk.
func (fm *FileManager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CleanupStale removes every image in the directory except keep.
// It does nothing in collect mode. Failures are logged and skipped.
func (fm *FileManager) CleanupStale(keep string) int {
	if fm.collect {
		return 0
	}

	matches, err := filepath.Glob(filepath.Join(fm.dir, "*"+ImageExt))
	if err != nil {
		log.Debugf("Cleanup: glob failed: %v", err)
		return 0
	}

	removed := 0
	for _, f := range matches {
		if f == keep {
			continue
		}
		if err := os.Remove(f); err != nil {
			log.Debugf("Cleanup: failed to remove %s: %v", f, err)
			continue
		}
		log.Debugf("Cleanup: removed %s", f)
		removed++
	}
	return removed
}

// writeFile is replaced in tests to simulate partial writes.
var writeFile = os.WriteFile

// Save verifies data is an image and writes it to path through a temporary file,
// so a crash never leaves a truncated image under the final name.
func (fm *FileManager) Save(path string, data []byte) error {
	if err := verifyImage(data); err != nil {
		return err
	}

	wipFile := path + WIPSuffix
	if err := writeFile(wipFile, data, 0644); err != nil {
		_ = os.Remove(wipFile)
		return fmt.Errorf("failed to write %s: %w", wipFile, err)
	}
	if err := os.Rename(wipFile, path); err != nil {
		_ = os.Remove(wipFile)
		return fmt.Errorf("failed to move %s into place: %w", wipFile, err)
	}
	return nil
}

func verifyImage(data []byte) error {
	if !filetype.IsImage(data) {
		return ErrNotAnImage
	}
	kind, _ := filetype.Match(data)

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotAnImage, kind.MIME.Value, err)
	}
	b := img.Bounds()
	log.Debugf("Downloaded %s image %dx%d", kind.MIME.Value, b.Dx(), b.Dy())
	return nil
}
