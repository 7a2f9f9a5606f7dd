package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
)

func TestCurrencyDisplay(t *testing.T) {
	usd := Currency{Code: "USD", Symbol: "$", Rate: 0.012}

	assert.Equal(t, "3.68", usd.Display(306.8))
	assert.Equal(t, "3.68", usd.Display(260+260*0.18))
	assert.Equal(t, "306.80", BaseCurrency.Display(306.8))
	assert.Equal(t, "0.00", usd.Display(0))
	assert.Equal(t, "$3.68", usd.DisplayWithSymbol(306.8))
	assert.Equal(t, "10.00", Currency{}.Display(10))
}

func TestOrderDisplayUsesSnapshot(t *testing.T) {
	order := &Order{
		Subtotal: 260,
		Tax:      46.8,
		Total:    306.8,
		Currency: Currency{Code: "USD", Symbol: "$", Rate: 0.012},
	}

	d := order.Display()
	assert.Equal(t, "3.12", d.Subtotal)
	assert.Equal(t, "0.56", d.Tax)
	assert.Equal(t, "3.68", d.Total)

	legacy := &Order{Total: 306.8}
	assert.Equal(t, "306.80", legacy.Display().Total)
	assert.Equal(t, BaseCurrencyCode, legacy.Display().Currency.Code)
}

func TestRole(t *testing.T) {
	r, err := ParseRole("Admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)
	assert.Equal(t, ViewAdmin, r.HomeView())
	assert.True(t, r.CanAdminister())

	r, err = ParseRole("staff")
	require.NoError(t, err)
	assert.Equal(t, ViewMenu, r.HomeView())
	assert.False(t, r.CanAdminister())
	assert.True(t, r.CanManageMenu())

	_, err = ParseRole("owner")
	assert.Error(t, err)

	var zero Role
	assert.False(t, zero.CanManageMenu())
	assert.False(t, zero.CanAdminister())
}

func TestRoleJSON(t *testing.T) {
	u := User{ID: "1", Username: "sam", Role: RoleStaff, PasswordHash: "secret", CreatedAt: time.Unix(0, 0).UTC()}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"role":"staff"`)
	assert.NotContains(t, string(data), "secret")

	var decoded User
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, RoleStaff, decoded.Role)
}

func TestUserPassword(t *testing.T) {
	u := &User{Username: "sam"}
	require.NoError(t, u.HashPassword("pass1234"))
	assert.NoError(t, u.CheckPassword("pass1234"))
	assert.Error(t, u.CheckPassword("wrong"))
}

func TestValidateVariants(t *testing.T) {
	tests := []struct {
		name     string
		variants []MenuItemVariant
		wantErr  bool
	}{
		{"valid", []MenuItemVariant{{Name: "Half", Price: 60}, {Name: "Full", Price: 100}}, false},
		{"empty", nil, true},
		{"blank name", []MenuItemVariant{{Name: " ", Price: 10}}, true},
		{"duplicate", []MenuItemVariant{{Name: "Full", Price: 10}, {Name: "Full", Price: 20}}, true},
		{"zero price", []MenuItemVariant{{Name: "Full", Price: 0}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVariants(tt.variants)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMenuItemUpdateApply(t *testing.T) {
	item := &MenuItem{Name: "Dal", Variants: []MenuItemVariant{{Name: "Full", Price: 100}}}

	empty := []MenuItemVariant{}
	err := MenuItemUpdate{Variants: &empty}.Apply(item)
	assert.True(t, apperrors.IsValidation(err))
	assert.Len(t, item.Variants, 1)

	name := "Dal Makhani"
	variants := []MenuItemVariant{{Name: "Half", Price: 70}, {Name: "Full", Price: 120}}
	require.NoError(t, MenuItemUpdate{Name: &name, Variants: &variants}.Apply(item))
	assert.Equal(t, "Dal Makhani", item.Name)
	assert.Equal(t, 120.0, item.Variant("Full").Price)
}

func TestProfileUpdate(t *testing.T) {
	p := NewDefaultProfile("u1")
	assert.Equal(t, 0.18, p.TaxRate)

	bad := 1.5
	assert.True(t, apperrors.IsValidation(ProfileUpdate{TaxRate: &bad}.Validate()))

	rate := 0.05
	phone := "12345"
	u := ProfileUpdate{TaxRate: &rate, Phone: &phone}
	require.NoError(t, u.Validate())
	u.Apply(p)
	assert.Equal(t, 0.05, p.TaxRate)
	assert.Equal(t, "12345", p.Phone)
	assert.Equal(t, "QuickBill Restaurant", p.RestaurantName)
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, ListParams{Page: 2, Limit: 2}, 5)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 2, p.Page)

	all := NewPage[int](nil, ListParams{Limit: 0}, 0)
	assert.Equal(t, 1, all.TotalPages)
	assert.NotNil(t, all.Data)

	assert.Equal(t, 20, ListParams{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, ListParams{Page: 3, Limit: 0}.Offset())
	assert.Equal(t, math.MaxInt, ListParams{Page: 1 << 62, Limit: 20}.Offset())

	huge := NewPage([]int{}, ListParams{Page: 1, Limit: math.MaxInt}, 3)
	assert.Equal(t, 1, huge.TotalPages)
}
