package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/pastedock/internal/capture"
	"github.com/hpungsan/pastedock/internal/clip"
	"github.com/hpungsan/pastedock/internal/errors"
)

// CaptureInput contains parameters for the Capture operation. Exactly the
// field matching Kind is used.
type CaptureInput struct {
	Kind           string
	Text           *string
	Image          []byte
	Files          []string
	SourceBundleID string
}

// CaptureOutput contains the result of the Capture operation.
type CaptureOutput struct {
	Outcome capture.Outcome `json:"outcome"`
	Reason  string          `json:"reason,omitempty"`
	Item    *clip.Summary   `json:"item,omitempty"`
}

// Capture runs content through the capture pipeline as if it had been copied.
func Capture(ctx context.Context, d *Deps, input CaptureInput) (*CaptureOutput, error) {
	kind, err := clip.ParseKind(input.Kind)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	in := clip.CaptureInput{Kind: kind, Text: input.Text, ImageBytes: input.Image, FilePaths: input.Files}
	if src := strings.TrimSpace(input.SourceBundleID); src != "" {
		in.SourceBundleID = &src
	}

	if err := d.Payloads.Write(&in); err != nil {
		return nil, errors.NewInternal(err)
	}

	dec := d.Pipeline.Process(ctx, in, d.settings())
	if dec.Outcome != capture.OutcomeSaved {
		d.Payloads.Discard(in.PayloadPath)
	}

	out := &CaptureOutput{Outcome: dec.Outcome, Reason: dec.Reason()}
	if dec.Item != nil {
		s := dec.Item.ToSummary()
		out.Item = &s
	}
	return out, nil
}
