package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

const (
	ticketKeyPrefix     = "pos:ticket:"
	submitLockKeyPrefix = "pos:ticket-lock:"
	profileKeyPrefix    = "pos:profile:"
	revokedKeyPrefix    = "pos:revoked:"

	defaultCacheTTL  = 5 * time.Minute
	defaultTicketTTL = 24 * time.Hour
)

// releaseLockScript deletes KEYS[1] only if it still holds ARGV[1].
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient creates a client for the configured Redis server.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisTicketStore implements TicketStore using Redis.
type RedisTicketStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisTicketStore creates a ticket store. Tickets idle for longer than
// ttl are dropped; zero means one day.
func NewRedisTicketStore(client *redis.Client, ttl time.Duration) *RedisTicketStore {
	if ttl == 0 {
		ttl = defaultTicketTTL
	}
	return &RedisTicketStore{
		client: client,
		ttl:    ttl,
		logger: logging.NewLoggerV2("ticket-store"),
	}
}

func (s *RedisTicketStore) Get(ctx context.Context, userID string) (*models.Ticket, error) {
	data, err := s.client.Get(ctx, ticketKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Ticket get error", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, apperrors.Transient("ticket store get", err)
	}

	var ticket models.Ticket
	if err := json.Unmarshal(data, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *RedisTicketStore) Save(ctx context.Context, ticket *models.Ticket) error {
	data, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, ticketKeyPrefix+ticket.UserID, data, s.ttl).Err(); err != nil {
		s.logger.Error("Ticket set error", logging.Fields{
			"user_id": ticket.UserID,
			"error":   err.Error(),
		})
		return apperrors.Transient("ticket store save", err)
	}
	return nil
}

func (s *RedisTicketStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, ticketKeyPrefix+userID).Err(); err != nil {
		return apperrors.Transient("ticket store delete", err)
	}
	return nil
}

func (s *RedisTicketStore) AcquireSubmitLock(ctx context.Context, userID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, submitLockKeyPrefix+userID, token, ttl).Result()
	if err != nil {
		return "", false, apperrors.Transient("submit lock acquire", err)
	}
	if !ok {
		s.logger.Warn("Submit lock already held", logging.Fields{"user_id": userID})
		return "", false, nil
	}
	return token, true, nil
}

func (s *RedisTicketStore) ReleaseSubmitLock(ctx context.Context, userID, token string) error {
	released, err := releaseLockScript.Run(ctx, s.client, []string{submitLockKeyPrefix + userID}, token).Int()
	if err != nil {
		return apperrors.Transient("submit lock release", err)
	}
	if released == 0 {
		s.logger.Warn("Submit lock expired before release", logging.Fields{"user_id": userID})
	}
	return nil
}

// RedisProfileCache implements ProfileCache using Redis.
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisProfileCache creates a profile cache; zero ttl means five minutes.
func NewRedisProfileCache(client *redis.Client, ttl time.Duration) *RedisProfileCache {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &RedisProfileCache{
		client: client,
		ttl:    ttl,
		logger: logging.NewLoggerV2("profile-cache"),
	}
}

// Get returns the cached profile, or nil on a miss.
func (c *RedisProfileCache) Get(ctx context.Context, userID string) (*models.Profile, error) {
	data, err := c.client.Get(ctx, profileKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss", logging.Fields{"user_id": userID})
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	c.logger.Debug("Cache hit", logging.Fields{"user_id": userID})
	return &p, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, p *models.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, profileKeyPrefix+p.UserID, data, c.ttl).Err()
}

func (c *RedisProfileCache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, profileKeyPrefix+userID).Err()
}

// RedisTokenStore implements TokenStore using Redis.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, apperrors.Transient("token store", err)
	}
	return n > 0, nil
}
