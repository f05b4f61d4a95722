package ops

import "context"

// PinInput contains parameters for the Pin operation.
type PinInput struct {
	ID     string
	Pinned bool
}

// PinOutput contains the result of the Pin operation.
type PinOutput struct {
	ID     string `json:"id"`
	Pinned bool   `json:"pinned"`
}

// Pin sets or clears an item's pin. Pinned items are never evicted.
func Pin(ctx context.Context, d *Deps, input PinInput) (*PinOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}
	if _, err := mustItem(ctx, d.Store, id); err != nil {
		return nil, err
	}
	if err := d.Store.Pin(ctx, id, input.Pinned); err != nil {
		return nil, err
	}
	return &PinOutput{ID: id, Pinned: input.Pinned}, nil
}
