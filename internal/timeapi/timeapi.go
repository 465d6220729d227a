// Package timeapi fetches the current date for a time zone from timeapi.io.
package timeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"financehub/internal/buffer"
	"financehub/internal/exchange"
	"financehub/internal/fetcher"
	"financehub/internal/logger"
)

// BufferSize is the fixed response buffer size; the endpoint's body is a few
// hundred bytes.
const BufferSize = 1024

// Markers shown in place of a value that could not be obtained.
const (
	InvalidDate = "Invalid Date"
	InvalidDay  = "Invalid Day"
	ParseError  = "JSON Parse Error"
	HTTPError   = "HTTP Error"
)

// Day is the current date as reported by the API.
type Day struct {
	Date      string
	DayOfWeek string
}

// String formats the day for a one-line header.
func (d Day) String() string {
	if d.DayOfWeek == "" {
		return d.Date
	}
	return fmt.Sprintf("%s, %s", d.DayOfWeek, d.Date)
}

// Fetcher fetches the current day for one time zone.
type Fetcher struct {
	transport exchange.Transport
	acc       buffer.Accumulator
	zone      string
}

// NewFetcher creates a fetcher for zone, an IANA name such as
// "America/New_York". A nil accumulator gets a fixed BufferSize buffer.
func NewFetcher(transport exchange.Transport, acc buffer.Accumulator, zone string) *Fetcher {
	if acc == nil {
		acc = buffer.NewFixed(BufferSize)
	}
	return &Fetcher{
		transport: transport,
		acc:       acc,
		zone:      zone,
	}
}

// Fetch returns the current day. On failure the returned Day carries a
// marker describing the failure, so it can still be displayed, together with
// the error.
func (f *Fetcher) Fetch(ctx context.Context) (Day, error) {
	req := exchange.Request{
		Method: http.MethodGet,
		URL:    "/api/time/current/zone?timeZone=" + url.QueryEscape(f.zone),
	}

	doc, ex, err := exchange.Do(ctx, f.transport, req, f.acc)
	if err != nil {
		var fe *fetcher.FetchError
		if errors.As(err, &fe) && fe.IsTransport() {
			return Day{Date: HTTPError}, fmt.Errorf("failed to fetch time for %s: %w", f.zone, err)
		}
		return Day{Date: ParseError}, fmt.Errorf("failed to read time for %s: %w", f.zone, err)
	}

	day := Day{
		Date:      doc.Get("date").StringOr(InvalidDate),
		DayOfWeek: doc.Get("dayOfWeek").StringOr(InvalidDay),
	}

	logger.Debug().
		Str("zone", f.zone).
		Str("exchange_id", ex.ID()).
		Str("date", day.Date).
		Str("day_of_week", day.DayOfWeek).
		Msg("time fetched")

	return day, nil
}

// Key returns the identifier of this source.
func (f *Fetcher) Key() string {
	return fmt.Sprintf("fetcher:timeapi:%s", f.zone)
}
