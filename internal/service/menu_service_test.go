package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

func TestMenuService_CreateValidates(t *testing.T) {
	env := newTestEnv(t)
	session := env.newUser(t, "sam", models.RoleStaff)

	tests := map[string]models.MenuItemInput{
		"no name":         {ImageURL: "x", Variants: []models.MenuItemVariant{{Name: "Full", Price: 1}}},
		"no variants":     {Name: "Dal", ImageURL: "x"},
		"zero price":      {Name: "Dal", ImageURL: "x", Variants: []models.MenuItemVariant{{Name: "Full", Price: 0}}},
		"dup variant":     {Name: "Dal", ImageURL: "x", Variants: []models.MenuItemVariant{{Name: "Full", Price: 1}, {Name: "Full", Price: 2}}},
		"unnamed variant": {Name: "Dal", ImageURL: "x", Variants: []models.MenuItemVariant{{Price: 1}}},
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := env.menu.Create(context.Background(), session, input)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestMenuService_OwnerScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sam := env.newUser(t, "sam", models.RoleStaff)
	kim := env.newUser(t, "kim", models.RoleStaff)
	dal := env.newItem(t, sam, "Dal", models.MenuItemVariant{Name: "Full", Price: 100})

	name := "Stolen"
	_, err := env.menu.Update(ctx, kim, dal.ID, models.MenuItemUpdate{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, env.menu.Delete(ctx, kim, dal.ID), apperrors.ErrNotFound)

	page, err := env.menu.List(ctx, kim, models.ListParams{Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestMenuService_DeleteMany(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Features.EnableOrderEvents = true })
	ctx := context.Background()
	sam := env.newUser(t, "sam", models.RoleStaff)
	dal := env.newItem(t, sam, "Dal", models.MenuItemVariant{Name: "Full", Price: 100})
	roti := env.newItem(t, sam, "Roti", models.MenuItemVariant{Name: "Plain", Price: 20})

	_, err := env.menu.DeleteMany(ctx, sam, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Item IDs are required")

	n, err := env.menu.DeleteMany(ctx, sam, []string{dal.ID, roti.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, env.publisher.deleted, 1)
	assert.ElementsMatch(t, []string{dal.ID, roti.ID}, env.publisher.deleted[0])
}
