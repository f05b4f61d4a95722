package ops

import (
	"context"
	stderrors "errors"

	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/errors"
	"github.com/hpungsan/pastedock/internal/payload"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	IncludeContent *bool // default: true (nil means default)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	clip.Summary

	// Text is the full text of a text item.
	Text *string `json:"text,omitempty"`

	// Files lists the paths of a file item; Missing the ones no longer on disk.
	Files   []string `json:"files,omitempty"`
	Missing []string `json:"missing,omitempty"`

	// ImageFormat is the decoded format of an image item, if recognized.
	ImageFormat string `json:"image_format,omitempty"`
}

// Fetch returns one item and, unless disabled, its content.
func Fetch(ctx context.Context, d *Deps, input FetchInput) (*FetchOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}
	it, err := mustItem(ctx, d.Store, id)
	if err != nil {
		return nil, err
	}

	out := &FetchOutput{Summary: it.ToSummary()}
	if input.IncludeContent != nil && !*input.IncludeContent {
		return out, nil
	}

	switch it.Kind {
	case clip.KindText:
		text, err := payload.ReadText(it.PayloadPath)
		if err != nil {
			return nil, errors.NewPayloadReadFailed(it.PayloadPath, err)
		}
		out.Text = &text

	case clip.KindImage:
		data, err := payload.ReadImage(it.PayloadPath)
		if err != nil {
			return nil, errors.NewPayloadReadFailed(it.PayloadPath, err)
		}
		out.ImageFormat, _ = payload.ImageFormat(data)

	case clip.KindFile:
		paths, err := payload.ReadFiles(it.PayloadPath)
		if err != nil {
			if stderrors.Is(err, payload.ErrInvalidManifest) {
				return nil, errors.NewInvalidFilePayload(it.PayloadPath, err)
			}
			return nil, errors.NewPayloadReadFailed(it.PayloadPath, err)
		}
		out.Files = paths
		for _, p := range paths {
			if !fileExists(p) {
				out.Missing = append(out.Missing, p)
			}
		}
	}
	return out, nil
}
