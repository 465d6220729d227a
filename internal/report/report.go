// Package report renders an aggregation summary for the terminal and as the
// JSON document consumed by the display.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"financehub/internal/account"
	"financehub/internal/coordinator"
)

var printer = message.NewPrinter(language.English)

// Amount formats a balance in dollars with thousands separators.
func Amount(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

// WriteText writes a human readable report. header, typically the current
// day, is printed first when not empty.
func WriteText(w io.Writer, header string, s *coordinator.Summary) error {
	p := &errWriter{w: w}

	if header != "" {
		p.printf("%s\n\n", header)
	}

	if len(s.Entries) == 0 {
		p.printf("No accounts.\n")
	}
	for _, e := range s.Entries {
		p.printf("%-24s %-28s %14s\n", e.Institution, e.Account, Amount(e.Balance))
	}

	p.printf("\n")
	for _, c := range s.Totals.Categories() {
		p.printf("%-53s %14s\n", "Total "+string(c), Amount(s.Totals.Get(c)))
	}

	if failed := s.Failed(); len(failed) > 0 {
		p.printf("\nFailed sources:\n")
		for _, r := range failed {
			p.printf("  %s (%s): %v\n", r.Institution, r.Key, r.Error)
		}
	}

	return p.err
}

// WriteJSON writes entries as a JSON array of
// {"Institution","Account","Balance"} objects.
func WriteJSON(w io.Writer, entries []account.Entry) error {
	if entries == nil {
		entries = []account.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}
	return nil
}

// errWriter keeps the first write error so WriteText can print
// unconditionally.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprint(e.w, printer.Sprintf(format, args...))
}
