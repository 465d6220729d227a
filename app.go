package main

import (
	"context"
	"io"
	"time"

	"financehub/internal/account"
	"financehub/internal/buffer"
	"financehub/internal/config"
	"financehub/internal/coordinator"
	"financehub/internal/exchange"
	"financehub/internal/fetcher"
	"financehub/internal/logger"
	"financehub/internal/metrics"
	"financehub/internal/plaid"
	"financehub/internal/ratelimit"
	"financehub/internal/report"
	"financehub/internal/timeapi"
)

// app wires the configured sources to their transports.
type app struct {
	cfg     *config.Config
	limiter *ratelimit.Limiter
	metrics *metrics.Recorder
}

func newApp(cfg *config.Config) *app {
	a := &app{
		cfg: cfg,
		limiter: ratelimit.New(map[ratelimit.API]float64{
			ratelimit.APIPlaid:   cfg.PlaidRateLimit,
			ratelimit.APITimeAPI: cfg.TimeRateLimit,
		}),
	}
	if cfg.MetricsFile != "" {
		a.metrics = metrics.New()
	}
	return a
}

func (a *app) transportOptions(api ratelimit.API, timeout time.Duration) []exchange.Option {
	opts := []exchange.Option{
		exchange.WithTimeout(timeout),
		exchange.WithChunkSize(a.cfg.ChunkSize),
		exchange.WithRateLimit(a.limiter, api),
	}
	if a.metrics != nil {
		opts = append(opts, exchange.WithObserver(a.metrics))
	}
	return opts
}

// balanceFetchers creates one Plaid fetcher per configured source. They share
// one transport and one response buffer and must therefore run sequentially.
func (a *app) balanceFetchers() []fetcher.Fetcher {
	transport := exchange.NewRestyTransport(
		fetcher.NewHTTPClient(a.cfg.PlaidBaseURL, fetcher.ClientOptions{RetryCount: a.cfg.RetryCount}),
		a.transportOptions(ratelimit.APIPlaid, a.cfg.PlaidTimeout)...,
	)
	acc := buffer.NewGrowable(a.cfg.MaxResponseBytes)
	creds := plaid.Credentials{
		ClientID:       a.cfg.PlaidClientID,
		Secret:         a.cfg.PlaidSecret,
		MinLastUpdated: a.cfg.PlaidMinLastUpdated,
	}

	fetchers := make([]fetcher.Fetcher, 0, len(a.cfg.Sources))
	for _, src := range a.cfg.Sources {
		fetchers = append(fetchers, plaid.NewAccountsFetcher(transport, acc, creds, src.AccessToken, src.Institution))
	}
	return fetchers
}

func (a *app) timeFetcher() *timeapi.Fetcher {
	transport := exchange.NewRestyTransport(
		fetcher.NewHTTPClient(a.cfg.TimeAPIBaseURL, fetcher.ClientOptions{RetryCount: a.cfg.RetryCount}),
		a.transportOptions(ratelimit.APITimeAPI, a.cfg.TimeTimeout)...,
	)
	return timeapi.NewFetcher(transport, buffer.NewFixed(a.cfg.TimeBufferBytes), a.cfg.TimeZone)
}

func (a *app) aggregate(ctx context.Context) *coordinator.Summary {
	classifier := account.NewClassifier(a.cfg.CheckingAccounts)
	summary := coordinator.New(a.balanceFetchers(), classifier).Aggregate(ctx)

	logger.Info().
		Int("accounts", len(summary.Entries)).
		Int("failed_sources", len(summary.Failed())).
		Str("checking", summary.Totals.Decimal(account.CategoryChecking).StringFixed(2)).
		Str("credit", summary.Totals.Decimal(account.CategoryCredit).StringFixed(2)).
		Msg("aggregation complete")

	if a.metrics != nil {
		a.metrics.ObserveSummary(summary)
	}
	return summary
}

// flushMetrics writes the metrics file when metrics are enabled.
func (a *app) flushMetrics() error {
	if a.metrics == nil {
		return nil
	}
	return a.metrics.WriteFile(a.cfg.MetricsFile)
}

// currentDay returns the formatted day, or the failure marker when the date
// could not be fetched.
func (a *app) currentDay(ctx context.Context) string {
	day, err := a.timeFetcher().Fetch(ctx)
	if err != nil {
		logger.Warn().
			Str("zone", a.cfg.TimeZone).
			Str("error_type", string(fetcher.TypeOf(err))).
			Err(err).
			Msg("failed to fetch current date")
	}
	return day.String()
}

func (a *app) runReport(ctx context.Context, w io.Writer) error {
	header := a.currentDay(ctx)
	if err := report.WriteText(w, header, a.aggregate(ctx)); err != nil {
		return err
	}
	return a.flushMetrics()
}

func (a *app) runBalances(ctx context.Context, w io.Writer, asJSON bool) error {
	summary := a.aggregate(ctx)

	var err error
	if asJSON {
		err = report.WriteJSON(w, summary.Entries)
	} else {
		err = report.WriteText(w, "", summary)
	}
	if err != nil {
		return err
	}
	return a.flushMetrics()
}

func (a *app) runTime(ctx context.Context, w io.Writer) error {
	if _, err := io.WriteString(w, a.currentDay(ctx)+"\n"); err != nil {
		return err
	}
	return a.flushMetrics()
}
