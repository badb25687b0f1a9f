package shared

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned by stores when the record is absent or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists encoded session payloads keyed by session id.
type SessionStore interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Set(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions in Redis with key expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "session:"}
}

// Get loads the payload for id.
func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes the payload with ttl.
func (s *RedisStore) Set(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+id, data, ttl).Err()
}

// Delete removes the payload.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a process-local store. Expired entries are hidden from Get
// and removed by Prune, which Run calls on every tick.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	interval time.Duration
	now      func() time.Time
	onPrune  func(removed int)
}

// NewMemoryStore constructs a MemoryStore pruning every interval.
func NewMemoryStore(interval time.Duration) *MemoryStore {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &MemoryStore{
		entries:  make(map[string]memoryEntry),
		interval: interval,
		now:      time.Now,
	}
}

// Get loads the payload for id.
func (s *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	out := make([]byte, len(entry.data))
	copy(out, entry.data)
	return out, nil
}

// Set writes the payload with ttl.
func (s *MemoryStore) Set(_ context.Context, id string, data []byte, ttl time.Duration) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.mu.Lock()
	s.entries[id] = memoryEntry{data: buf, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes the payload.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// OnPrune registers fn to receive the count of every sweep run by Run.
func (s *MemoryStore) OnPrune(fn func(removed int)) {
	s.mu.Lock()
	s.onPrune = fn
	s.mu.Unlock()
}

// Prune drops every entry expired at now and reports how many were removed.
func (s *MemoryStore) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run prunes on the configured interval until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed := s.Prune(s.now())
			s.mu.Lock()
			fn := s.onPrune
			s.mu.Unlock()
			if fn != nil {
				fn(removed)
			}
		}
	}
}

var (
	_ SessionStore = (*RedisStore)(nil)
	_ SessionStore = (*MemoryStore)(nil)
)
