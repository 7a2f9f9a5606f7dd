package models

import (
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
)

// DefaultProfileTaxRate is the tax rate a new profile starts with.
const DefaultProfileTaxRate = 0.18

// Profile is the restaurant profile of one user.
type Profile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	RestaurantName string    `json:"restaurantName"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	LogoURL        string    `json:"logoUrl"`
	TaxRate        float64   `json:"taxRate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewDefaultProfile returns the profile a user gets on first access.
func NewDefaultProfile(userID string) *Profile {
	return &Profile{
		UserID:         userID,
		RestaurantName: "QuickBill Restaurant",
		Address:        "123 Foodie Lane, Gourmet City",
		Phone:          "N/A",
		TaxRate:        DefaultProfileTaxRate,
	}
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	RestaurantName *string  `json:"restaurantName"`
	Address        *string  `json:"address"`
	Phone          *string  `json:"phone"`
	LogoURL        *string  `json:"logoUrl"`
	TaxRate        *float64 `json:"taxRate"`
}

// Validate checks the update against the profile constraints.
func (u ProfileUpdate) Validate() error {
	if u.TaxRate != nil && (*u.TaxRate < 0 || *u.TaxRate > 1) {
		return apperrors.NewValidationError("taxRate", "Tax rate must be between 0 and 1.")
	}
	if u.RestaurantName != nil && *u.RestaurantName == "" {
		return apperrors.NewValidationError("restaurantName", "Restaurant name is required.")
	}
	return nil
}

// Apply copies the set fields onto p.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.RestaurantName != nil {
		p.RestaurantName = *u.RestaurantName
	}
	if u.Address != nil {
		p.Address = *u.Address
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.LogoURL != nil {
		p.LogoURL = *u.LogoURL
	}
	if u.TaxRate != nil {
		p.TaxRate = *u.TaxRate
	}
}
