package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

func TestLoadCurrencyTable_Defaults(t *testing.T) {
	table, err := LoadCurrencyTable("")
	require.NoError(t, err)

	assert.Len(t, table.List(), 4)
	usd, err := table.Lookup("usd")
	require.NoError(t, err)
	assert.Equal(t, 0.012, usd.Rate)

	_, err = table.Lookup("JPY")
	assert.True(t, apperrors.IsValidation(err))
}

func TestLoadCurrencyTable_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "currencies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
currencies:
  - code: usd
    symbol: $
    rate: 0.0125
  - code: AED
    symbol: د.إ
    rate: 0.044
`), 0o600))

	table, err := LoadCurrencyTable(path)
	require.NoError(t, err)

	list := table.List()
	require.Len(t, list, 3)
	assert.Equal(t, models.BaseCurrency, list[0])

	usd, err := table.Lookup("USD")
	require.NoError(t, err)
	assert.Equal(t, 0.0125, usd.Rate)
}

func TestNewCurrencyTable_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		currencies []models.Currency
	}{
		{name: "zero rate", currencies: []models.Currency{{Code: "USD", Rate: 0}}},
		{name: "missing code", currencies: []models.Currency{{Rate: 1}}},
		{name: "base not one", currencies: []models.Currency{{Code: "INR", Rate: 2}}},
		{name: "duplicate", currencies: []models.Currency{{Code: "USD", Rate: 0.012}, {Code: "usd", Rate: 0.013}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCurrencyTable(tt.currencies)
			assert.Error(t, err)
		})
	}
}

func TestLoadCurrencyTable_MissingFile(t *testing.T) {
	_, err := LoadCurrencyTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
