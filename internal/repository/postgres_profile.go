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

// PostgresProfileRepository implements ProfileRepository using PostgreSQL.
type PostgresProfileRepository struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

func NewPostgresProfileRepository(db *sql.DB, logger *logging.LoggerV2) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db, logger: logger}
}

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, restaurant_name, address, phone, logo_url, tax_rate, created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &p.RestaurantName, &p.Address, &p.Phone, &p.LogoURL,
		&p.TaxRate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts the profile or replaces the stored one for the same user.
func (r *PostgresProfileRepository) Upsert(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, user_id, restaurant_name, address, phone, logo_url, tax_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			restaurant_name = EXCLUDED.restaurant_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			logo_url = EXCLUDED.logo_url,
			tax_rate = EXCLUDED.tax_rate,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, p.ID, p.UserID, p.RestaurantName, p.Address, p.Phone, p.LogoURL, p.TaxRate, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert profile", logging.Fields{
			"user_id": p.UserID,
			"error":   err.Error(),
		})
		return err
	}
	return nil
}

// PostgresLogRepository implements LogRepository using PostgreSQL.
type PostgresLogRepository struct {
	db *sql.DB
}

func NewPostgresLogRepository(db *sql.DB) *PostgresLogRepository {
	return &PostgresLogRepository{db: db}
}

func (r *PostgresLogRepository) Create(ctx context.Context, entry *models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var meta sql.NullString
	if entry.Meta != nil {
		data, err := json.Marshal(entry.Meta)
		if err != nil {
			return err
		}
		meta = sql.NullString{String: string(data), Valid: true}
	}

	var userID sql.NullString
	if entry.UserID != "" {
		userID = sql.NullString{String: entry.UserID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO logs (id, level, message, meta, user_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, string(entry.Level), entry.Message, meta, userID, entry.Timestamp)
	return err
}

// List returns entries newest first.
func (r *PostgresLogRepository) List(ctx context.Context, filter models.LogFilter) ([]*models.LogEntry, error) {
	var f sqlFilter
	if filter.UserID != "" {
		f.where("l.user_id = %s", filter.UserID)
	}
	query := `SELECT l.id, l.level, l.message, l.meta, COALESCE(l.user_id, ''), COALESCE(u.username, ''), l.timestamp
		FROM logs l LEFT JOIN users u ON u.id = l.user_id` + f.clause() + " ORDER BY l.timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + f.bind(filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.LogEntry, 0)
	for rows.Next() {
		var (
			e        models.LogEntry
			level    string
			metaJSON []byte
		)
		if err := rows.Scan(&e.ID, &level, &e.Message, &metaJSON, &e.UserID, &e.Username, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Level = models.LogLevel(level)
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &e.Meta); err != nil {
				return nil, err
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
