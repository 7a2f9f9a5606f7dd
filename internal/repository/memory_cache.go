package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// MemoryTicketStore implements TicketStore in memory. Tickets are kept
// serialized so a stored ticket never aliases a caller's.
type MemoryTicketStore struct {
	mu      sync.Mutex
	tickets map[string][]byte
	locks   map[string]submitLock
	now     func() time.Time
}

type submitLock struct {
	token   string
	expires time.Time
}

func NewMemoryTicketStore() *MemoryTicketStore {
	return &MemoryTicketStore{
		tickets: make(map[string][]byte),
		locks:   make(map[string]submitLock),
		now:     time.Now,
	}
}

func (s *MemoryTicketStore) Get(_ context.Context, userID string) (*models.Ticket, error) {
	s.mu.Lock()
	data, ok := s.tickets[userID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var t models.Ticket
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *MemoryTicketStore) Save(_ context.Context, ticket *models.Ticket) error {
	data, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tickets[ticket.UserID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryTicketStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.tickets, userID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryTicketStore) AcquireSubmitLock(_ context.Context, userID string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if lock, held := s.locks[userID]; held && now.Before(lock.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	s.locks[userID] = submitLock{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (s *MemoryTicketStore) ReleaseSubmitLock(_ context.Context, userID, token string) error {
	s.mu.Lock()
	if lock, held := s.locks[userID]; held && lock.token == token {
		delete(s.locks, userID)
	}
	s.mu.Unlock()
	return nil
}

// MemoryProfileCache implements ProfileCache in memory without expiry.
type MemoryProfileCache struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

func NewMemoryProfileCache() *MemoryProfileCache {
	return &MemoryProfileCache{profiles: make(map[string]models.Profile)}
}

func (c *MemoryProfileCache) Get(_ context.Context, userID string) (*models.Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *MemoryProfileCache) Set(_ context.Context, p *models.Profile) error {
	c.mu.Lock()
	c.profiles[p.UserID] = *p
	c.mu.Unlock()
	return nil
}

func (c *MemoryProfileCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	delete(c.profiles, userID)
	c.mu.Unlock()
	return nil
}

// MemoryTokenStore implements TokenStore in memory.
type MemoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{revoked: make(map[string]time.Time)}
}

func (s *MemoryTokenStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.revoked[tokenID] = time.Now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(expires) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
