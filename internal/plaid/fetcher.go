// Package plaid fetches account balances from the Plaid API.
package plaid

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"financehub/internal/account"
	"financehub/internal/buffer"
	"financehub/internal/exchange"
	"financehub/internal/logger"
)

// BalancePath is the Plaid endpoint returning real-time balances.
const BalancePath = "/accounts/balance/get"

// Credentials identify the application to Plaid.
type Credentials struct {
	ClientID string
	Secret   string
	// MinLastUpdated is sent as options.min_last_updated_datetime when set.
	MinLastUpdated string
}

type balanceOptions struct {
	MinLastUpdatedDatetime string `json:"min_last_updated_datetime"`
}

// balanceRequest is the JSON body of a balance request.
type balanceRequest struct {
	ClientID    string          `json:"client_id"`
	Secret      string          `json:"secret"`
	AccessToken string          `json:"access_token"`
	Options     *balanceOptions `json:"options,omitempty"`
}

// AccountsFetcher fetches the accounts of one institution.
type AccountsFetcher struct {
	transport   exchange.Transport
	acc         buffer.Accumulator
	creds       Credentials
	accessToken string
	institution string
}

// NewAccountsFetcher creates a fetcher for the institution reachable with
// accessToken. The accumulator may be shared with other fetchers as long as
// they are never run concurrently.
func NewAccountsFetcher(transport exchange.Transport, acc buffer.Accumulator, creds Credentials, accessToken, institution string) *AccountsFetcher {
	return &AccountsFetcher{
		transport:   transport,
		acc:         acc,
		creds:       creds,
		accessToken: accessToken,
		institution: institution,
	}
}

func (f *AccountsFetcher) request() exchange.Request {
	body := balanceRequest{
		ClientID:    f.creds.ClientID,
		Secret:      f.creds.Secret,
		AccessToken: f.accessToken,
	}
	if f.creds.MinLastUpdated != "" {
		body.Options = &balanceOptions{MinLastUpdatedDatetime: f.creds.MinLastUpdated}
	}

	return exchange.Request{
		Method:    http.MethodPost,
		URL:       BalancePath,
		AuthToken: f.accessToken,
		Body:      body,
	}
}

// Fetch performs one balance exchange and extracts the accounts.
func (f *AccountsFetcher) Fetch(ctx context.Context) ([]account.Entry, error) {
	doc, ex, err := exchange.Do(ctx, f.transport, f.request(), f.acc)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balances for %s: %w", f.institution, err)
	}

	entries, err := ExtractAccounts(doc, f.institution)
	if err != nil {
		return nil, fmt.Errorf("unexpected balance response for %s: %w", f.institution, err)
	}

	logger.Debug().
		Str("institution", f.institution).
		Str("exchange_id", ex.ID()).
		Int("accounts", len(entries)).
		Msg("balances extracted")

	return entries, nil
}

// Institution returns the label attached to every extracted entry.
func (f *AccountsFetcher) Institution() string {
	return f.institution
}

// Key returns the identifier of this source.
// Creates a stub from the institution by replacing spaces with underscores and lowercasing
func (f *AccountsFetcher) Key() string {
	stub := strings.ToLower(strings.ReplaceAll(f.institution, " ", "_"))
	stub = strings.ReplaceAll(stub, ",", "")
	return fmt.Sprintf("fetcher:plaid:%s", stub)
}
