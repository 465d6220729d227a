package account

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier([]string{"Checking", "Plaid Saving", "*Money Market"})

	tests := []struct {
		name string
		want Category
	}{
		{"Checking", CategoryChecking},
		{"Plaid Saving", CategoryChecking},
		{"Plaid Money Market", CategoryChecking},
		{"Rewards Card", CategoryCredit},
		{"checking", CategoryCredit},
		{"Checking Plus", CategoryCredit},
		{"", CategoryCredit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.name))
		})
	}
}

func TestClassifier_EmptyRuleSet(t *testing.T) {
	assert.Equal(t, CategoryCredit, NewClassifier(nil).Classify("Checking"))
}

func TestTotals_Add(t *testing.T) {
	totals := NewTotals()
	assert.Equal(t, 0.0, totals.Get(CategoryChecking))
	assert.Equal(t, 0.0, totals.Get(CategoryCredit))

	totals.Add(CategoryChecking, 100.5)
	totals.Add(CategoryCredit, 42.0)
	totals.Add(CategoryChecking, 0.1)
	totals.Add(CategoryChecking, 0.2)

	assert.Equal(t, 100.8, totals.Get(CategoryChecking))
	assert.Equal(t, "100.80", totals.Decimal(CategoryChecking).StringFixed(2))
	assert.Equal(t, 42.0, totals.Get(CategoryCredit))
	assert.Equal(t, []Category{CategoryChecking, CategoryCredit}, totals.Categories())
	assert.Equal(t, map[Category]float64{CategoryChecking: 100.8, CategoryCredit: 42.0}, totals.Map())
}

func TestTotals_UnknownCategory(t *testing.T) {
	totals := NewTotals()
	totals.Add(Category("loan"), -250)

	assert.Equal(t, -250.0, totals.Get("loan"))
	assert.Len(t, totals.Categories(), 3)
}

func TestEntry_JSONShape(t *testing.T) {
	out, err := json.Marshal([]Entry{{Institution: "Bank A", Account: "Checking", Balance: 100.5}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Institution":"Bank A","Account":"Checking","Balance":100.5}]`, string(out))
}
