package ops

import (
	"context"

	"github.com/hpungsan/pastedock/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete removes an item and its payload blob.
func Delete(ctx context.Context, d *Deps, input DeleteInput) (*DeleteOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}

	// Verify it exists (mustItem returns ErrNotFound if not)
	if _, err := mustItem(ctx, d.Store, id); err != nil {
		return nil, err
	}

	if err := d.Store.Delete(ctx, id); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      id,
	}, nil
}

// ClearInput contains parameters for the Clear operation.
type ClearInput struct {
	Confirm bool
}

// ClearOutput contains the result of the Clear operation.
type ClearOutput struct {
	Cleared bool `json:"cleared"`
	Removed int  `json:"removed"`
}

// Clear removes every item, pinned ones included. Requires Confirm.
func Clear(ctx context.Context, d *Deps, input ClearInput) (*ClearOutput, error) {
	if !input.Confirm {
		return nil, errors.NewInvalidRequest("clear removes pinned items too; pass confirm to proceed")
	}

	before, err := d.Store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.Store.ClearAll(ctx); err != nil {
		return nil, err
	}
	return &ClearOutput{Cleared: true, Removed: before.Count}, nil
}
