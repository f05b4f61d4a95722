package macos

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hpungsan/pastedock/internal/payload"
)

// imageClasses maps decoded image formats to pasteboard data classes.
var imageClasses = map[string]string{
	"png":  "«class PNGf»",
	"jpeg": "«class JPEG»",
	"gif":  "«class GIFf»",
}

// Pasteboard writes to the general pasteboard.
type Pasteboard struct {
	run     Runner
	tempDir string
}

// NewPasteboard creates a Pasteboard. A nil runner uses ExecRunner.
func NewPasteboard(r Runner) *Pasteboard {
	if r == nil {
		r = ExecRunner{}
	}
	return &Pasteboard{run: r}
}

// WriteText replaces the pasteboard with text.
func (p *Pasteboard) WriteText(ctx context.Context, text string) error {
	_, err := p.run.Run(ctx, []byte(text), "pbcopy")
	return err
}

// WriteImage replaces the pasteboard with image data. Undecodable data is
// written as PNG data as-is.
func (p *Pasteboard) WriteImage(ctx context.Context, data []byte, decodable bool) error {
	class := imageClasses["png"]
	if decodable {
		if format, ok := payload.ImageFormat(data); ok {
			if c, ok := imageClasses[format]; ok {
				class = c
			}
		}
	}

	f, err := os.CreateTemp(p.tempDir, "pastedock-image-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	script := fmt.Sprintf("set the clipboard to (read (POSIX file %s) as %s)", quote(f.Name()), class)
	_, err = osascript(ctx, p.run, script)
	return err
}

// WriteFiles replaces the pasteboard with file references.
func (p *Pasteboard) WriteFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files to write")
	}
	refs := make([]string, len(paths))
	for i, path := range paths {
		refs[i] = "POSIX file " + quote(path)
	}
	script := fmt.Sprintf("set the clipboard to {%s}", strings.Join(refs, ", "))
	_, err := osascript(ctx, p.run, script)
	return err
}
