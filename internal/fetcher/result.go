package fetcher

// Result represents the outcome of fetching one source during an
// aggregation run. A failed source and a source with zero accounts both
// contribute nothing to the totals; Result keeps them apart.
type Result struct {
	// Key is the hierarchical identifier of the source
	Key string

	// Institution is the source's display label
	Institution string

	// Entries is the number of accounts the source contributed
	Entries int

	// Error contains any error that occurred during the fetch operation.
	// If Error is not nil, the source contributed no entries.
	Error error
}

// OK reports whether the source was fetched successfully.
func (r Result) OK() bool {
	return r.Error == nil
}
