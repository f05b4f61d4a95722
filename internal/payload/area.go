// Package payload stores captured content blobs on disk, partitioned by kind.
// History items reference blobs by path only.
package payload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/pastedock/internal/clip"
)

// Subdirectories of the payload root.
const (
	TextsDir  = "texts"
	ImagesDir = "images"
	FilesDir  = "files"
)

// ErrInvalidManifest is returned by ReadFiles when the manifest cannot be decoded.
var ErrInvalidManifest = errors.New("invalid file manifest")

// Area is the payload directory tree rooted at <baseDir>/payloads.
type Area struct {
	root string
	now  func() time.Time
}

// Open creates (if needed) and returns the area under baseDir.
func Open(baseDir string) (*Area, error) {
	root := filepath.Join(baseDir, "payloads")
	for _, sub := range []string{TextsDir, ImagesDir, FilesDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0700); err != nil {
			return nil, fmt.Errorf("failed to create payload directory: %w", err)
		}
	}
	return &Area{root: root, now: time.Now}, nil
}

// Root returns the area's root directory.
func (a *Area) Root() string {
	return a.root
}

// WriteText stores text as UTF-8 and returns the blob path.
func (a *Area) WriteText(text string) (string, error) {
	return a.write(TextsDir, "txt", []byte(text))
}

// WriteImage stores encoded image bytes and returns the blob path.
// The extension follows the detected format, "bin" if unrecognized.
func (a *Area) WriteImage(data []byte) (string, error) {
	ext := "bin"
	if format, ok := ImageFormat(data); ok {
		ext = format
	}
	return a.write(ImagesDir, ext, data)
}

// WriteFiles stores the file manifest for paths and returns the blob path.
func (a *Area) WriteFiles(paths []string) (string, error) {
	data, err := clip.EncodeFilePayload(clip.SanitizeFilePaths(paths))
	if err != nil {
		return "", err
	}
	return a.write(FilesDir, "json", data)
}

// Write stores the payload for a capture of kind and fills in.PayloadPath.
func (a *Area) Write(in *clip.CaptureInput) error {
	var (
		path string
		err  error
	)
	switch in.Kind {
	case clip.KindText:
		text := ""
		if in.Text != nil {
			text = *in.Text
		}
		path, err = a.WriteText(text)
	case clip.KindImage:
		path, err = a.WriteImage(in.ImageBytes)
	case clip.KindFile:
		path, err = a.WriteFiles(in.FilePaths)
	default:
		return fmt.Errorf("unknown kind %q", in.Kind)
	}
	if err != nil {
		return err
	}
	in.PayloadPath = path
	return nil
}

// Discard removes a blob that was written for a capture that was not saved.
// Paths outside the area are ignored.
func (a *Area) Discard(path string) {
	if a.Contains(path) {
		_ = os.Remove(path)
	}
}

// Contains reports whether path lies inside the area.
func (a *Area) Contains(path string) bool {
	if path == "" {
		return false
	}
	rel, err := filepath.Rel(a.root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}

// write stores data atomically (temp file + rename) under sub.
func (a *Area) write(sub, ext string, data []byte) (string, error) {
	dir := filepath.Join(a.root, sub)
	final := filepath.Join(dir, clip.NewID(a.now())+"."+ext)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create payload: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write payload: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to commit payload: %w", err)
	}
	return final, nil
}

// ReadText reads a text blob.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadImage reads an image blob.
func ReadImage(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadFiles reads and decodes a file manifest.
func ReadFiles(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fp, err := clip.DecodeFilePayload(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return fp.Paths, nil
}

// ImageFormat reports the registered image format of data ("png", "jpeg", "gif").
func ImageFormat(data []byte) (string, bool) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	return format, true
}
