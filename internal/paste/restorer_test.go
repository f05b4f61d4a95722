package paste

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/errors"
	"github.com/hpungsan/pastedock/internal/payload"
)

func openArea(t *testing.T) *payload.Area {
	t.Helper()
	a, err := payload.Open(t.TempDir())
	require.NoError(t, err)
	return a
}

func TestPayloadRestorer_Text(t *testing.T) {
	a := openArea(t)
	path, err := a.WriteText("héllo")
	require.NoError(t, err)

	board := &recordingBoard{}
	err = NewPayloadRestorer(board).Restore(context.Background(), &clip.Item{Kind: clip.KindText, PayloadPath: path})

	require.NoError(t, err)
	assert.Equal(t, "héllo", board.text)
}

func TestPayloadRestorer_ImageDecodable(t *testing.T) {
	a := openArea(t)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	path, err := a.WriteImage(buf.Bytes())
	require.NoError(t, err)

	board := &recordingBoard{}
	require.NoError(t, NewPayloadRestorer(board).Restore(context.Background(), &clip.Item{Kind: clip.KindImage, PayloadPath: path}))

	assert.True(t, board.decodable)
	assert.Equal(t, buf.Bytes(), board.image)
}

func TestPayloadRestorer_ImageRawFallback(t *testing.T) {
	a := openArea(t)
	path, err := a.WriteImage([]byte("opaque"))
	require.NoError(t, err)

	board := &recordingBoard{}
	require.NoError(t, NewPayloadRestorer(board).Restore(context.Background(), &clip.Item{Kind: clip.KindImage, PayloadPath: path}))

	assert.False(t, board.decodable)
	assert.Equal(t, []byte("opaque"), board.image)
}

func TestPayloadRestorer_Files(t *testing.T) {
	a := openArea(t)
	dir := t.TempDir()
	f1 := filepath.Join(dir, "one.txt")
	f2 := filepath.Join(dir, "two.txt")
	for _, p := range []string{f1, f2} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0600))
	}
	path, err := a.WriteFiles([]string{f1, f2})
	require.NoError(t, err)

	board := &recordingBoard{}
	require.NoError(t, NewPayloadRestorer(board).Restore(context.Background(), &clip.Item{Kind: clip.KindFile, PayloadPath: path}))

	assert.Equal(t, []string{f1, f2}, board.files)
}

func TestPayloadRestorer_FirstMissingFileReported(t *testing.T) {
	a := openArea(t)
	dir := t.TempDir()
	present := filepath.Join(dir, "here.txt")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0600))
	missing1 := filepath.Join(dir, "gone1.txt")
	missing2 := filepath.Join(dir, "gone2.txt")

	path, err := a.WriteFiles([]string{present, missing1, missing2})
	require.NoError(t, err)

	err = NewPayloadRestorer(&recordingBoard{}).Restore(context.Background(), &clip.Item{Kind: clip.KindFile, PayloadPath: path})

	cErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrFileMissing, cErr.Code)
	assert.Equal(t, missing1, cErr.Details["path"])
}

func TestPayloadRestorer_Errors(t *testing.T) {
	dir := t.TempDir()
	badManifest := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badManifest, []byte("nope"), 0600))
	emptyManifest := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(emptyManifest, []byte(`{"paths":[]}`), 0600))
	text := filepath.Join(dir, "t.txt")
	require.NoError(t, os.WriteFile(text, []byte("t"), 0600))

	tests := []struct {
		name  string
		item  *clip.Item
		board *recordingBoard
		code  errors.ErrorCode
	}{
		{"missing text blob", &clip.Item{Kind: clip.KindText, PayloadPath: filepath.Join(dir, "none.txt")}, &recordingBoard{}, errors.ErrPayloadReadFailed},
		{"missing image blob", &clip.Item{Kind: clip.KindImage, PayloadPath: filepath.Join(dir, "none.png")}, &recordingBoard{}, errors.ErrPayloadReadFailed},
		{"missing manifest", &clip.Item{Kind: clip.KindFile, PayloadPath: filepath.Join(dir, "none.json")}, &recordingBoard{}, errors.ErrPayloadReadFailed},
		{"corrupt manifest", &clip.Item{Kind: clip.KindFile, PayloadPath: badManifest}, &recordingBoard{}, errors.ErrInvalidFilePayload},
		{"empty manifest", &clip.Item{Kind: clip.KindFile, PayloadPath: emptyManifest}, &recordingBoard{}, errors.ErrInvalidFilePayload},
		{"pasteboard rejects", &clip.Item{Kind: clip.KindText, PayloadPath: text}, &recordingBoard{err: stderrors.New("denied")}, errors.ErrPasteboardWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPayloadRestorer(tt.board).Restore(context.Background(), tt.item)
			assert.True(t, errors.Is(err, tt.code), "err = %v, want %s", err, tt.code)
		})
	}
}
