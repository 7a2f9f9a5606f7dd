package models

import (
	"fmt"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
)

// TicketState is the payment confirmation state of an in-progress order.
type TicketState string

const (
	TicketBuilding        TicketState = "building"
	TicketAwaitingPayment TicketState = "awaiting_payment"
)

var (
	ErrVariantRequired = apperrors.NewValidationError("selectedVariant", "Please select a variant.")
	ErrEmptyTicket     = apperrors.NewValidationError("items", "Cannot save an empty order.")
	ErrTicketLocked    = apperrors.NewConflictError("Order is awaiting payment and cannot be changed.")
)

// Ticket is the in-progress order of one operator session.
type Ticket struct {
	UserID      string      `json:"userId"`
	State       TicketState `json:"state"`
	Lines       []OrderLine `json:"lines"`
	Customer    Customer    `json:"customer"`
	TaxIncluded bool        `json:"taxIncluded"`
	Currency    Currency    `json:"currency"`
	// Quote is frozen when the ticket moves to awaiting payment.
	Quote     *OrderTotal `json:"quote,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewTicket returns an empty building ticket in the given display currency.
func NewTicket(userID string, currency Currency) *Ticket {
	return &Ticket{
		UserID:   userID,
		State:    TicketBuilding,
		Lines:    []OrderLine{},
		Currency: currency.OrBase(),
	}
}

// Mutable reports whether lines, customer, tax toggle and currency may change.
func (t *Ticket) Mutable() bool {
	return t.State == TicketBuilding || t.State == ""
}

func (t *Ticket) ensureMutable() error {
	if !t.Mutable() {
		return ErrTicketLocked
	}
	return nil
}

// AddLine adds one unit of item in the given variant. An existing line with the
// same item id and variant name is incremented; otherwise a new line is
// appended with a copy of the variant as it is right now.
func (t *Ticket) AddLine(item *MenuItem, variant *MenuItemVariant) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	if item == nil || variant == nil {
		return ErrVariantRequired
	}

	for i := range t.Lines {
		line := &t.Lines[i]
		if line.Item.ID == item.ID && line.SelectedVariant != nil && line.SelectedVariant.Name == variant.Name {
			line.Quantity++
			return nil
		}
	}

	snapshot := *variant
	t.Lines = append(t.Lines, OrderLine{
		Item:            item.Ref(),
		Quantity:        1,
		SelectedVariant: &snapshot,
	})
	return nil
}

// SetQuantity sets the quantity of the matching line. Zero or negative removes it.
func (t *Ticket) SetQuantity(itemID, variantName string, quantity int) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}

	idx := t.indexOf(itemID, variantName)
	if idx < 0 {
		return fmt.Errorf("order line %s/%s: %w", itemID, variantName, apperrors.ErrNotFound)
	}

	if quantity <= 0 {
		t.Lines = append(t.Lines[:idx], t.Lines[idx+1:]...)
		return nil
	}
	t.Lines[idx].Quantity = quantity
	return nil
}

func (t *Ticket) indexOf(itemID, variantName string) int {
	for i, line := range t.Lines {
		if line.Item.ID == itemID && line.SelectedVariant != nil && line.SelectedVariant.Name == variantName {
			return i
		}
	}
	return -1
}

// Clear empties the lines and blanks the customer.
func (t *Ticket) Clear() error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.reset()
	return nil
}

func (t *Ticket) reset() {
	t.Lines = []OrderLine{}
	t.Customer = Customer{}
	t.Quote = nil
	t.State = TicketBuilding
}

// SetCustomer replaces the customer details.
func (t *Ticket) SetCustomer(c Customer) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.Customer = c
	return nil
}

// SetTaxIncluded flips the per-order tax toggle.
func (t *Ticket) SetTaxIncluded(included bool) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.TaxIncluded = included
	return nil
}

// SetCurrency changes the display currency.
func (t *Ticket) SetCurrency(c Currency) error {
	if err := t.ensureMutable(); err != nil {
		return err
	}
	t.Currency = c.OrBase()
	return nil
}

// BeginPayment freezes quote and moves the ticket to awaiting payment.
func (t *Ticket) BeginPayment(quote OrderTotal) error {
	if t.State == TicketAwaitingPayment {
		return apperrors.NewConflictError("Order is already awaiting payment.")
	}
	if len(t.Lines) == 0 {
		return ErrEmptyTicket
	}
	t.Quote = &quote
	t.State = TicketAwaitingPayment
	return nil
}

// CancelPayment returns an awaiting-payment ticket to building.
func (t *Ticket) CancelPayment() error {
	if t.State != TicketAwaitingPayment {
		return apperrors.NewConflictError("Order is not awaiting payment.")
	}
	t.Quote = nil
	t.State = TicketBuilding
	return nil
}

// Complete resets the ticket for the next order after a successful save.
// Currency and tax toggle are operator preferences and carry over.
func (t *Ticket) Complete() {
	t.reset()
}
