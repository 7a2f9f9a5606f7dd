package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// legacyVariantName is the variant given to lines stored before variants existed.
const legacyVariantName = "Regular"

// storedLine is an order line as written by any version of the service.
// Older rows carry priceAtOrder instead of selectedVariant.
type storedLine struct {
	Item            models.OrderItemRef     `json:"item"`
	Quantity        int                     `json:"quantity"`
	SelectedVariant *models.MenuItemVariant `json:"selectedVariant,omitempty"`
	PriceAtOrder    *float64                `json:"priceAtOrder,omitempty"`
}

func decodeLines(data []byte) ([]models.OrderLine, error) {
	var stored []storedLine
	if len(data) > 0 {
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil, err
		}
	}

	lines := make([]models.OrderLine, 0, len(stored))
	for _, s := range stored {
		line := models.OrderLine{
			Item:            s.Item,
			Quantity:        s.Quantity,
			SelectedVariant: s.SelectedVariant,
		}
		if line.SelectedVariant == nil && s.PriceAtOrder != nil {
			line.SelectedVariant = &models.MenuItemVariant{Name: legacyVariantName, Price: *s.PriceAtOrder}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// fillLegacyDefaults completes the money fields of rows written before
// subtotal, tax, tax rate or currency were stored.
func fillLegacyDefaults(o *models.Order, subtotal, tax, taxRate sql.NullFloat64, currencyJSON []byte) error {
	o.Subtotal = o.Total
	if subtotal.Valid {
		o.Subtotal = subtotal.Float64
	}
	if tax.Valid {
		o.Tax = tax.Float64
	}
	if taxRate.Valid {
		o.TaxRate = taxRate.Float64
	}

	o.Currency = models.BaseCurrency
	if len(currencyJSON) > 0 && string(currencyJSON) != "null" {
		var c models.Currency
		if err := json.Unmarshal(currencyJSON, &c); err != nil {
			return err
		}
		o.Currency = c.OrBase()
	}
	return nil
}
