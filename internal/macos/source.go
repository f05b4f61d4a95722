package macos

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/monitor"
)

const fileURLsScript = `ObjC.import("AppKit");
var items = $.NSPasteboard.generalPasteboard.pasteboardItems;
var out = [];
for (var i = 0; i < items.count; i++) {
  var s = items.objectAtIndex(i).stringForType("public.file-url");
  if (s && !s.isNil()) { out.push($.NSURL.URLWithString(s).path.js); }
}
out.join("\n");`

const pngScript = `try
	return (the clipboard as «class PNGf»)
on error
	return ""
end try`

// Source reads the general pasteboard. Files win over text, and text over
// images, so a Finder copy is captured as files rather than their names.
type Source struct {
	run Runner
}

// NewSource creates a Source. A nil runner uses ExecRunner.
func NewSource(r Runner) *Source {
	if r == nil {
		r = ExecRunner{}
	}
	return &Source{run: r}
}

// Read implements monitor.Source.
func (s *Source) Read(ctx context.Context) (monitor.Snapshot, error) {
	files, err := s.files(ctx)
	if err != nil {
		return monitor.Snapshot{}, err
	}
	if len(files) > 0 {
		return monitor.Snapshot{Kind: clip.KindFile, Files: files}, nil
	}

	text, err := s.run.Run(ctx, nil, "pbpaste", "-Prefer", "txt")
	if err != nil {
		return monitor.Snapshot{}, err
	}
	if len(text) > 0 {
		return monitor.Snapshot{Kind: clip.KindText, Text: string(text)}, nil
	}

	img, err := s.png(ctx)
	if err != nil {
		return monitor.Snapshot{}, err
	}
	if len(img) > 0 {
		return monitor.Snapshot{Kind: clip.KindImage, Image: img}, nil
	}
	return monitor.Snapshot{}, nil
}

func (s *Source) files(ctx context.Context) ([]string, error) {
	out, err := jxa(ctx, s.run, fileURLsScript)
	if err != nil {
		return nil, err
	}
	return clip.SanitizeFilePaths(strings.Split(out, "\n")), nil
}

func (s *Source) png(ctx context.Context) ([]byte, error) {
	out, err := osascript(ctx, s.run, pngScript)
	if err != nil {
		return nil, err
	}
	return decodeDataLiteral(out, "PNGf"), nil
}

// decodeDataLiteral parses AppleScript's «data XXXXhex» rendering.
// Anything else yields nil.
func decodeDataLiteral(out, class string) []byte {
	prefix := "«data " + class
	if !strings.HasPrefix(out, prefix) || !strings.HasSuffix(out, "»") {
		return nil
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(out, prefix), "»")
	data, err := hex.DecodeString(raw)
	if err != nil {
		return nil
	}
	return data
}
