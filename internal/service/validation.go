package service

import (
	"strings"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// maxLogMessageLength bounds client log messages.
const maxLogMessageLength = 2000

// ValidateCreateOrderRequest validates a client-priced order.
func ValidateCreateOrderRequest(req *models.CreateOrderRequest, requireCustomer bool) error {
	if len(req.Items) == 0 {
		return models.ErrEmptyTicket
	}

	for _, line := range req.Items {
		if err := validateOrderLine(line); err != nil {
			return err
		}
	}

	if !req.PaymentMethod.Valid() {
		return apperrors.NewValidationError("paymentMethod", "Payment method must be cash, upi or card.")
	}

	if req.TaxRate < 0 || req.TaxRate > 1 {
		return apperrors.NewValidationError("taxRate", "Tax rate must be between 0 and 1.")
	}

	if requireCustomer {
		return ValidateCustomer(req.Customer)
	}
	return nil
}

func validateOrderLine(line models.OrderLine) error {
	if line.Item.ID == "" {
		return apperrors.NewValidationError("items", "Item id is required.")
	}
	if line.SelectedVariant == nil || strings.TrimSpace(line.SelectedVariant.Name) == "" {
		return models.ErrVariantRequired
	}
	if line.SelectedVariant.Price <= 0 {
		return apperrors.NewValidationError("items", "Variant price must be greater than zero.")
	}
	if line.Quantity < 1 {
		return apperrors.NewValidationError("items", "Quantity must be at least 1.")
	}
	return nil
}

// ValidateCustomer requires a customer name and mobile number.
func ValidateCustomer(c models.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.NewValidationError("customer.name", "Please enter the customer name.")
	}
	if strings.TrimSpace(c.Mobile) == "" {
		return apperrors.NewValidationError("customer.mobile", "Please enter the customer mobile number.")
	}
	return nil
}

// ValidateLogEntry validates a client log entry.
func ValidateLogEntry(entry *models.LogEntry) error {
	if !entry.Level.Valid() {
		return apperrors.NewValidationError("level", "Invalid log payload")
	}
	if strings.TrimSpace(entry.Message) == "" {
		return apperrors.NewValidationError("message", "Invalid log payload")
	}
	if len(entry.Message) > maxLogMessageLength {
		entry.Message = entry.Message[:maxLogMessageLength]
	}
	return nil
}

// ValidateCredentials validates a username and password pair for a new user.
func ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return apperrors.NewValidationError("username", "Username and password are required")
	}
	if len(password) < models.MinPasswordLength {
		return apperrors.NewValidationError("password", "Password is too short")
	}
	return nil
}
