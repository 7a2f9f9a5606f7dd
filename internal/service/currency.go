package service

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// CurrencyTable is the static set of display currencies, keyed by code.
type CurrencyTable struct {
	currencies []models.Currency
	byCode     map[string]models.Currency
}

type currencyFile struct {
	Currencies []models.Currency `yaml:"currencies"`
}

// NewCurrencyTable validates currencies and builds a table. The base
// currency is always present at rate 1.
func NewCurrencyTable(currencies []models.Currency) (*CurrencyTable, error) {
	t := &CurrencyTable{byCode: make(map[string]models.Currency, len(currencies)+1)}

	for _, c := range currencies {
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		if c.Code == "" {
			return nil, fmt.Errorf("currency code is required")
		}
		if c.Rate <= 0 {
			return nil, fmt.Errorf("currency %s: rate must be positive", c.Code)
		}
		if c.Code == models.BaseCurrencyCode && c.Rate != 1 {
			return nil, fmt.Errorf("currency %s: base rate must be 1", c.Code)
		}
		if _, dup := t.byCode[c.Code]; dup {
			return nil, fmt.Errorf("currency %s: duplicate code", c.Code)
		}
		t.byCode[c.Code] = c
		t.currencies = append(t.currencies, c)
	}

	if _, ok := t.byCode[models.BaseCurrencyCode]; !ok {
		t.byCode[models.BaseCurrencyCode] = models.BaseCurrency
		t.currencies = append([]models.Currency{models.BaseCurrency}, t.currencies...)
	}
	return t, nil
}

// LoadCurrencyTable reads a YAML table from path, or returns the built-in
// table when path is empty.
func LoadCurrencyTable(path string) (*CurrencyTable, error) {
	if path == "" {
		return NewCurrencyTable(models.DefaultCurrencies)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read currencies file: %w", err)
	}

	var file currencyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse currencies file: %w", err)
	}
	return NewCurrencyTable(file.Currencies)
}

// List returns the currencies in table order.
func (t *CurrencyTable) List() []models.Currency {
	return append([]models.Currency(nil), t.currencies...)
}

// Lookup returns the currency with the given code.
func (t *CurrencyTable) Lookup(code string) (models.Currency, error) {
	c, ok := t.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return models.Currency{}, apperrors.NewValidationError("currency", "Unsupported currency: "+code)
	}
	return c, nil
}
