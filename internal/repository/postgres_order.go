package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

var orderSortColumns = map[string]string{
	"date":          "o.date",
	"total":         "o.total",
	"customer.name": "o.customer->>'name'",
}

const orderColumns = `o.id, o.user_id, COALESCE(u.username, ''), o.customer, o.items,
	o.subtotal, o.tax, o.total, o.tax_rate, o.currency, o.payment_method, o.date`

const orderFrom = ` FROM orders o LEFT JOIN users u ON u.id = o.user_id`

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *logging.LoggerV2) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db, logger: logger}
}

// Create stores the order and, on success, sets its id and date.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.logger.Debug("Creating order", logging.Fields{"user_id": order.UserID})

	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return err
	}
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	currencyJSON, err := json.Marshal(order.Currency.OrBase())
	if err != nil {
		return err
	}

	id := uuid.NewString()
	date := time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, customer, items, subtotal, tax, total, tax_rate,
			currency, payment_method, date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		id,
		order.UserID,
		customerJSON,
		itemsJSON,
		order.Subtotal,
		order.Tax,
		order.Total,
		order.TaxRate,
		currencyJSON,
		string(order.PaymentMethod),
		date,
	)
	if err != nil {
		r.logger.Error("Failed to create order", logging.Fields{
			"user_id": order.UserID,
			"error":   err.Error(),
		})
		return err
	}

	order.ID = id
	order.Date = date
	order.Currency = order.Currency.OrBase()

	r.logger.Info("Order created successfully", logging.Fields{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.Total,
	})
	return nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, userID, id string) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+orderFrom+
		" WHERE o.id = $1 AND o.user_id = $2", id, userID)
	return scanOrder(row)
}

// List returns one page of orders matching filter and the total match count.
func (r *PostgresOrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error) {
	r.logger.Debug("Listing orders", logging.Fields{
		"user_id": filter.UserID,
		"limit":   filter.Limit,
		"page":    filter.Page,
	})

	var f sqlFilter
	if filter.UserID != "" {
		f.where("o.user_id = %s", filter.UserID)
	}
	if filter.PaymentMethod != "" {
		f.where("o.payment_method = %s", string(filter.PaymentMethod))
	}
	if filter.From != nil {
		f.where("o.date >= %s", *filter.From)
	}
	if filter.To != nil {
		f.where("o.date < %s", *filter.To)
	}
	if filter.Search != "" {
		if filter.SearchAmount != nil {
			f.where("(o.customer->>'name' ILIKE %[1]s OR o.id ILIKE %[1]s OR ROUND(o.total::numeric, 2) = %[2]s)",
				likePattern(filter.Search), *filter.SearchAmount)
		} else {
			f.where("(o.customer->>'name' ILIKE %[1]s OR o.id ILIKE %[1]s)", likePattern(filter.Search))
		}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders o"+f.clause(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := orderSortColumns[filter.SortBy]
	if !ok {
		sortCol = orderSortColumns["date"]
	}
	query := "SELECT " + orderColumns + orderFrom + f.clause() +
		" ORDER BY " + sortCol + " " + sortDirection(string(filter.SortOrder)) + ", o.id"
	if filter.Limit > 0 {
		query += " LIMIT " + f.bind(filter.Limit) + " OFFSET " + f.bind(filter.Offset())
	}

	orders, err := r.query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *PostgresOrderRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *PostgresOrderRepository) ListAll(ctx context.Context, userID string, limit int) ([]*models.Order, error) {
	var f sqlFilter
	if userID != "" {
		f.where("o.user_id = %s", userID)
	}
	query := "SELECT " + orderColumns + orderFrom + f.clause() + " ORDER BY o.date DESC"
	if limit > 0 {
		query += " LIMIT " + f.bind(limit)
	}
	return r.query(ctx, query, f.args...)
}

// Stats returns the number of orders and the sum of their totals.
func (r *PostgresOrderRepository) Stats(ctx context.Context) (int, float64, error) {
	var (
		count   int
		revenue float64
	)
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(total), 0) FROM orders`).Scan(&count, &revenue)
	return count, revenue, err
}

func (r *PostgresOrderRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order                   models.Order
		customerJSON, itemsJSON []byte
		currencyJSON            []byte
		subtotal, tax, taxRate  sql.NullFloat64
		paymentMethod           string
	)

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.OwnerName,
		&customerJSON,
		&itemsJSON,
		&subtotal,
		&tax,
		&order.Total,
		&taxRate,
		&currencyJSON,
		&paymentMethod,
		&order.Date,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	order.PaymentMethod = models.PaymentMethod(paymentMethod)
	if len(customerJSON) > 0 {
		if err := json.Unmarshal(customerJSON, &order.Customer); err != nil {
			return nil, err
		}
	}
	if order.Items, err = decodeLines(itemsJSON); err != nil {
		return nil, err
	}
	if err := fillLegacyDefaults(&order, subtotal, tax, taxRate, currencyJSON); err != nil {
		return nil, err
	}
	return &order, nil
}
