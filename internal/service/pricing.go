package service

import (
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// DefaultTaxRate applies when no restaurant profile is available.
const DefaultTaxRate = 0.05

// PricingEngine computes order totals from lines. Amounts are INR and kept
// unrounded; rounding happens only for display.
type PricingEngine struct {
	logger *logging.LoggerV2
}

func NewPricingEngine(logger *logging.LoggerV2) *PricingEngine {
	return &PricingEngine{logger: logger}
}

// TaxRate returns the profile's rate, or DefaultTaxRate without a profile.
func (e *PricingEngine) TaxRate(profile *models.Profile) float64 {
	if profile == nil {
		return DefaultTaxRate
	}
	return profile.TaxRate
}

// Subtotal sums price times quantity. Lines without a variant are skipped.
func (e *PricingEngine) Subtotal(lines []models.OrderLine) float64 {
	var subtotal float64
	for _, line := range lines {
		if line.SelectedVariant == nil {
			e.logger.Warn("Skipping order line without a variant", logging.Fields{
				"item_id":  line.Item.ID,
				"quantity": line.Quantity,
			})
			continue
		}
		subtotal += line.SelectedVariant.Price * float64(line.Quantity)
	}
	return subtotal
}

// Calculate computes the full breakdown for lines.
func (e *PricingEngine) Calculate(lines []models.OrderLine, taxIncluded bool, profile *models.Profile) models.OrderTotal {
	subtotal := e.Subtotal(lines)
	rate := e.TaxRate(profile)

	var tax float64
	if taxIncluded {
		tax = subtotal * rate
	}

	return models.OrderTotal{
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       subtotal + tax,
		TaxRate:     rate,
		TaxIncluded: taxIncluded,
	}
}
