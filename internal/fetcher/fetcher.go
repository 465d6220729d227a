package fetcher

import (
	"context"

	"financehub/internal/account"
)

// Fetcher is the core interface every account source implements.
// A fetcher performs one exchange with its institution per Fetch call and
// must not be called concurrently: it owns the response buffer it reuses
// across exchanges.
type Fetcher interface {
	// Fetch retrieves the accounts of one institution, in the order the
	// institution reported them. On error the returned entries are nil.
	Fetch(ctx context.Context) ([]account.Entry, error)

	// Key returns a hierarchical identifier for this source.
	// Format: fetcher:{provider}:{institution}
	// Examples:
	//   - fetcher:plaid:chase
	//   - fetcher:plaid:bank_of_america
	Key() string

	// Institution returns the display label entries are tagged with.
	Institution() string
}
