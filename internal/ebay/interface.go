package ebay

import (
	"context"

	"github.com/pokebrief/gradewatch/internal/model"
)

// Provider defines the listing search surface consumers depend on.
type Provider interface {
	Available() bool
	Search(ctx context.Context, query string, limit int) ([]model.Listing, error)
}

// Ensure Client implements Provider
var _ Provider = (*Client)(nil)
