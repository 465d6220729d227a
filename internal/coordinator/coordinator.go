package coordinator

import (
	"context"

	"github.com/sourcegraph/conc/panics"

	"financehub/internal/account"
	"financehub/internal/fetcher"
	"financehub/internal/logger"
)

// Summary is the result of one aggregation run.
type Summary struct {
	// Entries holds every extracted account, in source order then in the
	// order each source reported them.
	Entries []account.Entry
	// Totals sums balances per category over the successful sources.
	Totals *account.Totals
	// Sources has one result per fetcher, in fetcher order.
	Sources []fetcher.Result
}

// Failed returns the results of the sources that could not be fetched.
func (s *Summary) Failed() []fetcher.Result {
	var out []fetcher.Result
	for _, r := range s.Sources {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Coordinator runs fetchers one after another and aggregates their accounts
type Coordinator struct {
	fetchers   []fetcher.Fetcher
	classifier *account.Classifier
}

// New creates a new Coordinator with the given fetchers
func New(fetchers []fetcher.Fetcher, classifier *account.Classifier) *Coordinator {
	return &Coordinator{
		fetchers:   fetchers,
		classifier: classifier,
	}
}

// Aggregate fetches every source in order and folds the accounts into a
// Summary. Fetchers share response buffers, so a source is only started once
// the previous one has returned. A failing source contributes nothing and is
// recorded in Summary.Sources; the run itself never fails.
func (c *Coordinator) Aggregate(ctx context.Context) *Summary {
	summary := &Summary{
		Entries: []account.Entry{},
		Totals:  account.NewTotals(),
		Sources: make([]fetcher.Result, 0, len(c.fetchers)),
	}

	for _, f := range c.fetchers {
		result := fetcher.Result{
			Key:         f.Key(),
			Institution: f.Institution(),
		}

		entries, err := fetchOne(ctx, f)
		if err != nil {
			result.Error = err
			summary.Sources = append(summary.Sources, result)

			logger.Warn().
				Str("source", result.Key).
				Str("institution", result.Institution).
				Str("error_type", string(fetcher.TypeOf(err))).
				Err(err).
				Msg("source failed")
			continue
		}

		for _, e := range entries {
			summary.Entries = append(summary.Entries, e)
			summary.Totals.Add(c.classifier.Classify(e.Account), e.Balance)
		}
		result.Entries = len(entries)
		summary.Sources = append(summary.Sources, result)

		logger.Info().
			Str("source", result.Key).
			Str("institution", result.Institution).
			Int("accounts", result.Entries).
			Msg("source aggregated")
	}

	return summary
}

// fetchOne runs a single fetcher, turning a cancelled context or a panic into
// an ordinary error.
func fetchOne(ctx context.Context, f fetcher.Fetcher) (entries []account.Entry, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fetcher.ClassifyTransportError(ctxErr)
	}

	if recovered := panics.Try(func() { entries, err = f.Fetch(ctx) }); recovered != nil {
		return nil, fetcher.NewPanicError(recovered.AsError())
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}
