package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/pastedock/internal/clip"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Query string // blank lists the most recent items
	Limit int    // default: quick_picker_result_limit, max: 2000
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []clip.Summary `json:"items"`
	Query string         `json:"query,omitempty"`
	Limit int            `json:"limit"`
	Sort  string         `json:"sort"`
}

// List returns items newest first, optionally filtered by preview text.
func List(ctx context.Context, d *Deps, input ListInput) (*ListOutput, error) {
	limit := resolveLimit(input.Limit, d.settings())
	query := input.Query
	if strings.TrimSpace(query) == "" {
		query = ""
	}

	items, err := d.Store.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Items: summaries(items),
		Query: query,
		Limit: limit,
		Sort:  "created_at_desc",
	}, nil
}
