// Package account holds the aggregated account model: entries extracted from
// institution responses, the categories they are summed into, and the totals.
package account

import (
	"slices"

	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
)

// Entry is one account as reported by an institution. Its JSON form is the
// element of the document handed to the display.
type Entry struct {
	Institution string  `json:"Institution"`
	Account     string  `json:"Account"`
	Balance     float64 `json:"Balance"`
}

// Category is a bucket account balances are summed into.
type Category string

const (
	// CategoryChecking covers checking and savings accounts.
	CategoryChecking Category = "checking"
	// CategoryCredit covers credit cards and everything not matched as checking.
	CategoryCredit Category = "credit"
)

// Classifier assigns an account to a category by its name.
type Classifier struct {
	checking []string
}

// NewClassifier creates a classifier that maps account names matching any of
// the given patterns to CategoryChecking. Patterns without '*' must match the
// name exactly.
func NewClassifier(checkingPatterns []string) *Classifier {
	return &Classifier{checking: slices.Clone(checkingPatterns)}
}

// Classify returns the category for an account name.
func (c *Classifier) Classify(accountName string) Category {
	for _, pattern := range c.checking {
		if glob.Glob(pattern, accountName) {
			return CategoryChecking
		}
	}
	return CategoryCredit
}

// Totals keeps a running sum per category.
type Totals struct {
	sums map[Category]decimal.Decimal
}

// NewTotals returns totals with every known category at zero.
func NewTotals() *Totals {
	return &Totals{
		sums: map[Category]decimal.Decimal{
			CategoryChecking: decimal.Zero,
			CategoryCredit:   decimal.Zero,
		},
	}
}

// Add folds amount into the category's total.
func (t *Totals) Add(category Category, amount float64) {
	t.sums[category] = t.Decimal(category).Add(decimal.NewFromFloat(amount))
}

// Decimal returns the exact total for a category.
func (t *Totals) Decimal(category Category) decimal.Decimal {
	if sum, ok := t.sums[category]; ok {
		return sum
	}
	return decimal.Zero
}

// Get returns the total for a category as a float.
func (t *Totals) Get(category Category) float64 {
	f, _ := t.Decimal(category).Float64()
	return f
}

// Categories returns the tracked categories in name order.
func (t *Totals) Categories() []Category {
	out := make([]Category, 0, len(t.sums))
	for c := range t.sums {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Map returns a copy of the totals as floats.
func (t *Totals) Map() map[Category]float64 {
	out := make(map[Category]float64, len(t.sums))
	for c := range t.sums {
		out[c] = t.Get(c)
	}
	return out
}
