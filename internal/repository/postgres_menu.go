package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

var menuSortColumns = map[string]string{
	"name":      "m.name",
	"createdAt": "m.created_at",
	"price":     "(m.variants->0->>'price')::float8",
}

const menuColumns = `m.id, m.user_id, COALESCE(u.username, ''), m.name, m.variants, m.image_url, m.created_at, m.updated_at`

// PostgresMenuRepository implements MenuRepository using PostgreSQL.
type PostgresMenuRepository struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

// NewPostgresMenuRepository creates a new PostgreSQL menu repository.
func NewPostgresMenuRepository(db *sql.DB, logger *logging.LoggerV2) *PostgresMenuRepository {
	return &PostgresMenuRepository{db: db, logger: logger}
}

func (r *PostgresMenuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	variantsJSON, err := json.Marshal(item.Variants)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, user_id, name, variants, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.UserID, item.Name, variantsJSON, item.ImageURL, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create menu item", logging.Fields{
			"user_id": item.UserID,
			"error":   err.Error(),
		})
		return err
	}

	r.logger.Info("Menu item created", logging.Fields{"item_id": item.ID, "user_id": item.UserID})
	return nil
}

func (r *PostgresMenuRepository) GetByID(ctx context.Context, userID, id string) (*models.MenuItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+menuColumns+`
		FROM menu_items m LEFT JOIN users u ON u.id = m.user_id
		WHERE m.id = $1 AND m.user_id = $2
	`, id, userID)
	return scanMenuItem(row)
}

func (r *PostgresMenuRepository) Update(ctx context.Context, item *models.MenuItem) error {
	variantsJSON, err := json.Marshal(item.Variants)
	if err != nil {
		return err
	}
	item.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_items SET name = $3, variants = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
	`, item.ID, item.UserID, item.Name, variantsJSON, item.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PostgresMenuRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	r.logger.Info("Menu item deleted", logging.Fields{"item_id": id})
	return nil
}

// DeleteMany removes the caller's items among ids and returns how many went.
func (r *PostgresMenuRepository) DeleteMany(ctx context.Context, userID string, ids []string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM menu_items WHERE user_id = $1 AND id = ANY($2)`, userID, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// List returns one page of the owner's menu and the total match count.
func (r *PostgresMenuRepository) List(ctx context.Context, filter models.MenuFilter) ([]*models.MenuItem, int, error) {
	var f sqlFilter
	f.where("m.user_id = %s", filter.UserID)
	if filter.Search != "" {
		f.where("m.name ILIKE %s", likePattern(filter.Search))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM menu_items m"+f.clause(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := menuSortColumns[filter.SortBy]
	if !ok {
		sortCol = menuSortColumns["createdAt"]
	}
	query := "SELECT " + menuColumns + " FROM menu_items m LEFT JOIN users u ON u.id = m.user_id" +
		f.clause() + " ORDER BY " + sortCol + " " + sortDirection(string(filter.SortOrder)) + ", m.id"
	if filter.Limit > 0 {
		query += " LIMIT " + f.bind(filter.Limit) + " OFFSET " + f.bind(filter.Offset())
	}

	items, err := r.query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListAll returns every item of every owner, newest first.
func (r *PostgresMenuRepository) ListAll(ctx context.Context) ([]*models.MenuItem, error) {
	return r.query(ctx, "SELECT "+menuColumns+
		" FROM menu_items m LEFT JOIN users u ON u.id = m.user_id ORDER BY m.created_at DESC")
}

func (r *PostgresMenuRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n)
	return n, err
}

func (r *PostgresMenuRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanMenuItem(row rowScanner) (*models.MenuItem, error) {
	var (
		item         models.MenuItem
		variantsJSON []byte
	)
	err := row.Scan(&item.ID, &item.UserID, &item.OwnerName, &item.Name, &variantsJSON,
		&item.ImageURL, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(variantsJSON, &item.Variants); err != nil {
		return nil, err
	}
	return &item, nil
}
