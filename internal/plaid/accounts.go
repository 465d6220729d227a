package plaid

import (
	"financehub/internal/account"
	"financehub/internal/fetcher"
	"financehub/internal/jsondoc"
	"financehub/internal/logger"
)

const accountsField = "accounts"

// ExtractAccounts reads the accounts array of a balance response and tags
// every account with institution. Accounts without a string "name" or an
// object "balances" are skipped; a missing or non-numeric "current" balance
// is 0. When the document has no accounts array the result is empty and a
// missing_field error is returned alongside it.
func ExtractAccounts(doc jsondoc.Value, institution string) ([]account.Entry, error) {
	accounts, ok := doc.Get(accountsField).AsArray()
	if !ok {
		return []account.Entry{}, fetcher.NewMissingFieldError(accountsField)
	}

	entries := make([]account.Entry, 0, len(accounts))
	for i, acct := range accounts {
		name, ok := acct.Get("name").AsString()
		balances := acct.Get("balances")
		if !ok || !balances.IsObject() {
			logger.Debug().
				Str("institution", institution).
				Int("index", i).
				Str("name_kind", acct.Get("name").Kind().String()).
				Str("balances_kind", balances.Kind().String()).
				Msg("skipping malformed account")
			continue
		}

		entries = append(entries, account.Entry{
			Institution: institution,
			Account:     name,
			Balance:     balances.Get("current").NumberOr(0),
		})
	}

	return entries, nil
}
