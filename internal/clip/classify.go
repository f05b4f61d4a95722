package clip

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrInvalidInput is returned when a capture payload is absent, empty or unusable.
var ErrInvalidInput = errors.New("invalid capture input")

// PreviewMaxRunes is the length limit of a preview string.
const PreviewMaxRunes = 120

const ellipsis = "..."

// Classification is the identity and cost derived from one capture.
type Classification struct {
	// HashInput is the canonical byte sequence that was hashed
	HashInput []byte
	Hash      string
	ByteSize  int64
	Preview   string
}

// Classify derives hash, byte size and preview for a capture.
// Any validation failure wraps ErrInvalidInput.
func Classify(in CaptureInput) (*Classification, error) {
	switch in.Kind {
	case KindText:
		return classifyText(in.Text)
	case KindImage:
		return classifyImage(in.ImageBytes)
	case KindFile:
		return classifyFiles(in.FilePaths)
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, in.Kind)
}

func classifyText(text *string) (*Classification, error) {
	if text == nil || *text == "" {
		return nil, fmt.Errorf("%w: text is empty", ErrInvalidInput)
	}
	data := []byte(*text)
	return &Classification{
		HashInput: data,
		Hash:      Hash(data),
		ByteSize:  int64(len(data)),
		Preview:   TextPreview(*text),
	}, nil
}

func classifyImage(data []byte) (*Classification, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image bytes are empty", ErrInvalidInput)
	}
	return &Classification{
		HashInput: data,
		Hash:      Hash(data),
		ByteSize:  int64(len(data)),
		Preview:   ImagePreview(len(data)),
	}, nil
}

func classifyFiles(raw []string) (*Classification, error) {
	paths := SanitizeFilePaths(raw)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no file paths", ErrInvalidInput)
	}

	seed, err := filesHashSeed(paths)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	manifest, err := EncodeFilePayload(paths)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &Classification{
		HashInput: seed,
		Hash:      Hash(seed),
		ByteSize:  int64(len(manifest)),
		Preview:   FilePreview(paths),
	}, nil
}

// SanitizeFilePaths trims each path and drops empty entries, preserving order.
func SanitizeFilePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CanonicalPath returns the absolute, cleaned form of p with symlinks
// resolved when the path exists.
func CanonicalPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// filesHashSeed builds the order-independent hash input for a file list.
func filesHashSeed(paths []string) ([]byte, error) {
	canonical := make([]string, 0, len(paths))
	for _, p := range paths {
		c, err := CanonicalPath(p)
		if err != nil {
			return nil, err
		}
		canonical = append(canonical, c)
	}
	sort.Strings(canonical)
	return []byte(strings.Join(canonical, "\n")), nil
}

// Hash returns the lowercase hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// TextPreview collapses line breaks, trims, and truncates to PreviewMaxRunes.
func TextPreview(text string) string {
	s := strings.NewReplacer("\n", " ", "\r", " ").Replace(text)
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= PreviewMaxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:PreviewMaxRunes-len(ellipsis)]) + ellipsis
}

// ImagePreview formats "[Image] N KB" with N floored and at least 1.
func ImagePreview(byteCount int) string {
	kb := byteCount / 1024
	if kb < 1 {
		kb = 1
	}
	return fmt.Sprintf("[Image] %d KB", kb)
}

// FilePreview formats the preview for one or more file references.
// paths must be non-empty.
func FilePreview(paths []string) string {
	first := filepath.Base(paths[0])
	if len(paths) == 1 {
		return "[File] " + first
	}
	return fmt.Sprintf("[Files %d] %s +%d", len(paths), first, len(paths)-1)
}
