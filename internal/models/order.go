package models

import (
	"time"
)

// PaymentMethod is how an order was settled.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodCard PaymentMethod = "card"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodCard:
		return true
	}
	return false
}

type Customer struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

// OrderItemRef is the snapshot of a menu item kept on an order line.
type OrderItemRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// OrderLine is one distinct (item, variant) pair with a quantity. The
// variant is a value copy taken when the line was first added.
type OrderLine struct {
	Item            OrderItemRef     `json:"item"`
	Quantity        int              `json:"quantity"`
	SelectedVariant *MenuItemVariant `json:"selectedVariant,omitempty"`
}

// Key returns the line's uniqueness key.
func (l OrderLine) Key() LineKey {
	k := LineKey{ItemID: l.Item.ID}
	if l.SelectedVariant != nil {
		k.VariantName = l.SelectedVariant.Name
	}
	return k
}

// LineKey identifies an order line.
type LineKey struct {
	ItemID      string
	VariantName string
}

// OrderTotal is the pricing breakdown for a set of lines, in INR.
type OrderTotal struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
	TaxRate     float64 `json:"taxRate"`
	TaxIncluded bool    `json:"taxIncluded"`
}

// Order is a placed, immutable order. Amounts are INR as computed at save time.
type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	OwnerName     string        `json:"ownerName,omitempty"`
	Customer      Customer      `json:"customer"`
	Items         []OrderLine   `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	TaxRate       float64       `json:"taxRate"`
	Currency      Currency      `json:"currency"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Date          time.Time     `json:"date"`
}

// AmountsDisplay holds amounts formatted in one currency.
type AmountsDisplay struct {
	Currency Currency `json:"currency"`
	Subtotal string   `json:"subtotal"`
	Tax      string   `json:"tax"`
	Total    string   `json:"total"`
}

// Display formats the order's frozen amounts in the currency snapshotted on it.
func (o *Order) Display() AmountsDisplay {
	cur := o.Currency.OrBase()
	return AmountsDisplay{
		Currency: cur,
		Subtotal: cur.Display(o.Subtotal),
		Tax:      cur.Display(o.Tax),
		Total:    cur.Display(o.Total),
	}
}

// OrderView is an order together with its display amounts.
type OrderView struct {
	*Order
	Display AmountsDisplay `json:"display"`
}

// NewOrderView builds the view of a stored order.
func NewOrderView(o *Order) OrderView {
	return OrderView{Order: o, Display: o.Display()}
}

// CreateOrderRequest is a client-computed order submitted directly to POST /orders.
type CreateOrderRequest struct {
	Customer      Customer      `json:"customer"`
	Items         []OrderLine   `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	TaxRate       float64       `json:"taxRate"`
	Currency      Currency      `json:"currency"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// DateFilterType selects how OrderFilter dates are interpreted.
type DateFilterType string

const (
	DateFilterNone   DateFilterType = ""
	DateFilterToday  DateFilterType = "today"
	DateFilterSingle DateFilterType = "single"
	DateFilterRange  DateFilterType = "range"
)

// OrderFilter narrows an order listing. From/To and SearchAmount are resolved
// by the order service before the repository sees the filter.
type OrderFilter struct {
	ListParams
	UserID        string
	PaymentMethod PaymentMethod
	From          *time.Time
	To            *time.Time
	SearchAmount  *float64
}
