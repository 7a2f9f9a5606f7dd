package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

var orderRowColumns = []string{
	"id", "user_id", "username", "customer", "items", "subtotal", "tax",
	"total", "tax_rate", "currency", "payment_method", "date",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgresOrderRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, logging.NewNopLogger())

	order := &models.Order{
		UserID:        "u1",
		Customer:      models.Customer{Name: "Asha", Mobile: "98765"},
		Items:         []models.OrderLine{{Item: models.OrderItemRef{ID: "m1"}, Quantity: 2, SelectedVariant: &models.MenuItemVariant{Name: "Full", Price: 100}}},
		Subtotal:      200,
		Total:         200,
		TaxRate:       0.18,
		PaymentMethod: models.PaymentMethodCash,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs(sqlmock.AnyArg(), "u1", sqlmock.AnyArg(), sqlmock.AnyArg(), 200.0, 0.0, 200.0, 0.18,
			sqlmock.AnyArg(), "cash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), order))
	assert.NotEmpty(t, order.ID)
	assert.False(t, order.Date.IsZero())
	assert.Equal(t, models.BaseCurrencyCode, order.Currency.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderRepository_CreateFailureLeavesOrderUnsaved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, logging.NewNopLogger())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).WillReturnError(errors.New("connection reset"))

	order := &models.Order{UserID: "u1", Total: 10, PaymentMethod: models.PaymentMethodUPI}
	err := repo.Create(context.Background(), order)

	assert.Error(t, err)
	assert.Empty(t, order.ID)
	assert.True(t, order.Date.IsZero())
}

func TestPostgresOrderRepository_GetByID_FillsLegacyDefaults(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, logging.NewNopLogger())

	date := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(orderRowColumns).AddRow(
		"o1", "u1", "sam",
		[]byte(`{"name":"Asha","mobile":"98765"}`),
		[]byte(`[{"item":{"id":"m1","name":"Dal","imageUrl":"https://img/dal"},"quantity":2,"priceAtOrder":120}]`),
		nil, nil, 240.0, nil, nil, "cash", date,
	)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.id = $1 AND o.user_id = $2")).
		WithArgs("o1", "u1").
		WillReturnRows(rows)

	order, err := repo.GetByID(context.Background(), "u1", "o1")
	require.NoError(t, err)

	assert.Equal(t, 240.0, order.Subtotal)
	assert.Equal(t, 0.0, order.Tax)
	assert.Equal(t, models.BaseCurrency, order.Currency)
	assert.Equal(t, "sam", order.OwnerName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, &models.MenuItemVariant{Name: "Regular", Price: 120}, order.Items[0].SelectedVariant)
	assert.Equal(t, "240.00", order.Display().Total)
}

func TestPostgresOrderRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, logging.NewNopLogger())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.id = $1 AND o.user_id = $2")).
		WithArgs("o1", "other").
		WillReturnRows(sqlmock.NewRows(orderRowColumns))

	_, err := repo.GetByID(context.Background(), "other", "o1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgresOrderRepository_List_NumericSearch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, logging.NewNopLogger())

	amount := 306.8
	filter := models.OrderFilter{
		ListParams:   models.ListParams{Page: 1, Limit: 20, Search: "306.8", SortBy: "total", SortOrder: models.SortAsc},
		UserID:       "u1",
		SearchAmount: &amount,
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders o WHERE o.user_id = $1 AND (o.customer->>'name' ILIKE $2 OR o.id ILIKE $2 OR ROUND(o.total::numeric, 2) = $3)")).
		WithArgs("u1", "%306.8%", 306.8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY o.total ASC, o.id LIMIT $4 OFFSET $5")).
		WithArgs("u1", "%306.8%", 306.8, 20, 0).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).AddRow(
			"o1", "u1", "sam", []byte(`{}`), []byte(`[]`), 260.0, 46.8, 306.8, 0.18,
			[]byte(`{"code":"USD","symbol":"$","rate":0.012}`), "card", time.Now(),
		))

	orders, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "3.68", orders[0].Display().Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrderRepository_List_AllWhenLimitZero(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresOrderRepository(db, logging.NewNopLogger())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders o WHERE o.user_id = $1 AND o.payment_method = $2")).
		WithArgs("u1", "upi").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY o\.date DESC, o\.id$`).
		WithArgs("u1", "upi").
		WillReturnRows(sqlmock.NewRows(orderRowColumns))

	orders, total, err := repo.List(context.Background(), models.OrderFilter{
		ListParams:    models.ListParams{Limit: 0},
		UserID:        "u1",
		PaymentMethod: models.PaymentMethodUPI,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMenuRepository_DeleteForeignItem(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMenuRepository(db, logging.NewNopLogger())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM menu_items WHERE id = $1 AND user_id = $2")).
		WithArgs("m1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "intruder", "m1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgresMenuRepository_ListSortsByFirstVariantPrice(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMenuRepository(db, logging.NewNopLogger())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM menu_items m WHERE m.user_id = $1 AND m.name ILIKE $2")).
		WithArgs("u1", "%dal%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY (m.variants->0->>'price')::float8 DESC, m.id LIMIT $3 OFFSET $4")).
		WithArgs("u1", "%dal%", 12, 12).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "name", "variants", "image_url", "created_at", "updated_at"}).
			AddRow("m1", "u1", "sam", "Dal", []byte(`[{"name":"Half","price":60},{"name":"Full","price":100}]`), "https://img/dal", time.Now(), time.Now()))

	items, total, err := repo.List(context.Background(), models.MenuFilter{
		ListParams: models.ListParams{Page: 2, Limit: 12, Search: "dal", SortBy: "price", SortOrder: models.SortDesc},
		UserID:     "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, 60.0, items[0].BasePrice())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_GetByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db, logging.NewNopLogger())

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
			AddRow("u1", "admin", "hash", "admin", time.Now()))

	u, err := repo.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}
