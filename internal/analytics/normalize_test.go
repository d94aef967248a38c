package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage/server/internal/models"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    *string
		expected float64
	}{
		{name: "nil", input: nil, expected: 0},
		{name: "empty", input: strPtr(""), expected: 0},
		{name: "plain integer", input: strPtr("500000"), expected: 500000},
		{name: "decimal", input: strPtr("1250000.50"), expected: 1250000.50},
		{name: "currency and grouping", input: strPtr("R$ 1.250.000,50"), expected: 1250000.50},
		{name: "comma grouping", input: strPtr("$1,250,000"), expected: 1250000},
		{name: "decimal comma", input: strPtr("12,5"), expected: 12.5},
		{name: "garbage", input: strPtr("call for price"), expected: 0},
		{name: "negative", input: strPtr("-100"), expected: 0},
		{name: "dot thousands", input: strPtr("500.000"), expected: 500000},
		{name: "currency dot thousands", input: strPtr("R$ 500.000"), expected: 500000},
		{name: "repeated dot thousands", input: strPtr("1.500.000"), expected: 1500000},
		{name: "comma thousands", input: strPtr("1,000"), expected: 1000},
		{name: "mixed grouping", input: strPtr("1,250,000.75"), expected: 1250000.75},
		{name: "currency suffix", input: strPtr("750000 BRL"), expected: 750000},
		{name: "spaced grouping", input: strPtr("1 250 000"), expected: 1250000},
		{name: "fraction below one", input: strPtr("0.125"), expected: 0.125},
		{name: "exponent", input: strPtr("1e6"), expected: 1000000},
		{name: "inner minus", input: strPtr("12-34"), expected: 0},
		{name: "digits in text", input: strPtr("abc12def34"), expected: 0},
		{name: "bad grouping", input: strPtr("1.2.3"), expected: 0},
		{name: "two decimal commas", input: strPtr("1.000,5,5"), expected: 0},
		{name: "separator only", input: strPtr("."), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ParseAmount(tt.input), 1e-9)
		})
	}
}

func TestParseOptionalAmount(t *testing.T) {
	assert.Nil(t, ParseOptionalAmount(nil))
	assert.Nil(t, ParseOptionalAmount(strPtr("n/a")))
	assert.Nil(t, ParseOptionalAmount(strPtr("7x5")))

	v := ParseOptionalAmount(strPtr("0"))
	require.NotNil(t, v)
	assert.Equal(t, 0.0, *v)
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, models.StatusSold, NormalizeStatus(strPtr(" SOLD ")))
	assert.Equal(t, models.StatusRented, NormalizeStatus(strPtr("rented")))
	assert.Equal(t, models.StatusUnknown, NormalizeStatus(strPtr("vendido")))
	assert.Equal(t, models.StatusUnknown, NormalizeStatus(nil))
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    *string
		expected string
	}{
		{name: "nil", input: nil, expected: ""},
		{name: "plain", input: strPtr("Rua Augusta 100, São Paulo"), expected: "Rua Augusta 100, São Paulo"},
		{name: "json string", input: strPtr(`"Av. Paulista 1000"`), expected: "Av. Paulista 1000"},
		{
			name:     "json object",
			input:    strPtr(`{"city":"São Paulo","street":"Rua Augusta","number":100,"state":"SP"}`),
			expected: "Rua Augusta, 100, São Paulo, SP",
		},
		{name: "broken json", input: strPtr(`{"street":`), expected: `{"street":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeAddress(tt.input))
		})
	}
}

func TestNormalizeLead(t *testing.T) {
	lead := NormalizeLead(models.LeadRecord{
		ID:        "l1",
		Email:     strPtr(" Ana@Example.com "),
		MLScore:   strPtr("140"),
		Status:    strPtr("Qualified"),
		BudgetMin: strPtr("300000"),
	})
	require.NotNil(t, lead.MLScore)
	assert.Equal(t, 100.0, *lead.MLScore)
	assert.Equal(t, models.LeadQualified, lead.Status)
	assert.Equal(t, "ana@example.com", lead.Email)
	require.NotNil(t, lead.BudgetMin)
	assert.Equal(t, 300000.0, *lead.BudgetMin)
	assert.Nil(t, lead.BudgetMax)

	unscored := NormalizeLead(models.LeadRecord{ID: "l2", MLScore: strPtr("")})
	assert.Nil(t, unscored.MLScore)
}

func TestNormalizePropertyDropsNonPositiveArea(t *testing.T) {
	zero := 0.0
	p := NormalizeProperty(models.PropertyRecord{ID: "p", Area: &zero, Price: strPtr("abc")})
	assert.Nil(t, p.Area)
	assert.Equal(t, 0.0, p.Price)
	assert.Equal(t, models.StatusUnknown, p.Status)
}

func TestParseTimestamp(t *testing.T) {
	assert.Nil(t, ParseTimestamp(""))
	assert.Nil(t, ParseTimestamp("yesterday"))

	ts := ParseTimestamp("2024-01-31")
	require.NotNil(t, ts)
	assert.Equal(t, 31, ts.Day())

	ts = ParseTimestamp("2024-01-31 10:15:00.123+00")
	require.NotNil(t, ts)
	assert.Equal(t, 10, ts.Hour())
}
