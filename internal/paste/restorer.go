package paste

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/errors"
	"github.com/hpungsan/pastedock/internal/payload"
)

// Pasteboard is the writable system pasteboard.
type Pasteboard interface {
	WriteText(ctx context.Context, text string) error
	// WriteImage writes image bytes. decodable is false when the bytes are not
	// a recognized image format and should be written as raw data.
	WriteImage(ctx context.Context, data []byte, decodable bool) error
	WriteFiles(ctx context.Context, paths []string) error
}

// PayloadRestorer is the production Restorer: it reads the item's blob and
// writes it to a Pasteboard.
type PayloadRestorer struct {
	board Pasteboard
}

// NewPayloadRestorer creates a restorer writing to board.
func NewPayloadRestorer(board Pasteboard) *PayloadRestorer {
	return &PayloadRestorer{board: board}
}

// Restore implements Restorer.
func (r *PayloadRestorer) Restore(ctx context.Context, it *clip.Item) error {
	switch it.Kind {
	case clip.KindText:
		text, err := payload.ReadText(it.PayloadPath)
		if err != nil {
			return errors.NewPayloadReadFailed(it.PayloadPath, err)
		}
		return wrapWrite(r.board.WriteText(ctx, text))

	case clip.KindImage:
		data, err := payload.ReadImage(it.PayloadPath)
		if err != nil {
			return errors.NewPayloadReadFailed(it.PayloadPath, err)
		}
		_, decodable := payload.ImageFormat(data)
		return wrapWrite(r.board.WriteImage(ctx, data, decodable))

	case clip.KindFile:
		paths, err := payload.ReadFiles(it.PayloadPath)
		if err != nil {
			if stderrors.Is(err, payload.ErrInvalidManifest) {
				return errors.NewInvalidFilePayload(it.PayloadPath, err)
			}
			return errors.NewPayloadReadFailed(it.PayloadPath, err)
		}
		paths = clip.SanitizeFilePaths(paths)
		if len(paths) == 0 {
			return errors.NewInvalidFilePayload(it.PayloadPath, nil)
		}
		for _, p := range paths {
			if _, err := os.Stat(p); err != nil {
				return errors.NewFileMissing(p)
			}
		}
		return wrapWrite(r.board.WriteFiles(ctx, paths))
	}
	return errors.NewInternal(fmt.Errorf("unknown kind %q", it.Kind))
}

func wrapWrite(err error) error {
	if err == nil {
		return nil
	}
	return errors.NewPasteboardWriteFailed(err)
}
