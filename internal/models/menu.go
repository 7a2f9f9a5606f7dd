package models

import (
	"strings"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
)

// MenuItemVariant is a named price tier of a menu item, priced in INR.
type MenuItemVariant struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// MenuItem is a catalog entry owned by one user.
type MenuItem struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	OwnerName string            `json:"ownerName,omitempty"`
	Name      string            `json:"name"`
	Variants  []MenuItemVariant `json:"variants"`
	ImageURL  string            `json:"imageUrl"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Variant returns a copy of the named variant, or nil if the item has none by that name.
func (m *MenuItem) Variant(name string) *MenuItemVariant {
	for _, v := range m.Variants {
		if v.Name == name {
			variant := v
			return &variant
		}
	}
	return nil
}

// BasePrice is the price of the first variant, used for price sorting.
func (m *MenuItem) BasePrice() float64 {
	if len(m.Variants) == 0 {
		return 0
	}
	return m.Variants[0].Price
}

// Ref snapshots the fields of the item an order line keeps.
func (m *MenuItem) Ref() OrderItemRef {
	return OrderItemRef{ID: m.ID, Name: m.Name, ImageURL: m.ImageURL}
}

// ValidateVariants checks the variant invariants: at least one, names
// non-empty and unique, prices positive.
func ValidateVariants(variants []MenuItemVariant) error {
	if len(variants) == 0 {
		return apperrors.NewValidationError("variants", "At least one price variant is required.")
	}
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return apperrors.NewValidationError("variants", "Variant name is required.")
		}
		if _, dup := seen[name]; dup {
			return apperrors.NewValidationError("variants", "Variant names must be unique: "+name)
		}
		seen[name] = struct{}{}
		if v.Price <= 0 {
			return apperrors.NewValidationError("variants", "Variant price must be greater than zero: "+name)
		}
	}
	return nil
}

// Validate checks a full menu item before it is stored.
func (m *MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return apperrors.NewValidationError("name", "Please add a name")
	}
	if strings.TrimSpace(m.ImageURL) == "" {
		return apperrors.NewValidationError("imageUrl", "Please add an image URL")
	}
	return ValidateVariants(m.Variants)
}

// MenuItemInput is the create payload for a menu item.
type MenuItemInput struct {
	Name     string            `json:"name"`
	Variants []MenuItemVariant `json:"variants"`
	ImageURL string            `json:"imageUrl"`
	UserID   string            `json:"userId,omitempty"`
}

// MenuItemUpdate replaces the name and/or the whole variant list.
type MenuItemUpdate struct {
	Name     *string            `json:"name"`
	Variants *[]MenuItemVariant `json:"variants"`
}

// Apply validates the update and applies it to item.
func (u MenuItemUpdate) Apply(item *MenuItem) error {
	if u.Name != nil {
		if strings.TrimSpace(*u.Name) == "" {
			return apperrors.NewValidationError("name", "Please add a name")
		}
		item.Name = strings.TrimSpace(*u.Name)
	}
	if u.Variants != nil {
		if err := ValidateVariants(*u.Variants); err != nil {
			return err
		}
		item.Variants = append([]MenuItemVariant(nil), (*u.Variants)...)
	}
	return nil
}

// MenuFilter narrows a menu listing to one owner. SortBy is one of name,
// createdAt or price; price sorts by the first variant.
type MenuFilter struct {
	ListParams
	UserID string
}
