package cartstore

import (
	"context"
	"sync"
	"time"

	"parfumerie/internal/cart"
)

type memoryEntry struct {
	cart    *cart.Cart
	expires time.Time
}

type memoryLock struct {
	gen     uint64
	expires time.Time
}

// sweepInterval is the least time between two scans for expired entries.
const sweepInterval = time.Minute

// MemoryStore keeps carts in a map. Entries expire ttl after their last
// update; writes sweep out expired carts and busy flags at most once per
// sweepInterval.
type MemoryStore struct {
	mu        sync.Mutex
	carts     map[string]memoryEntry
	locks     map[string]memoryLock
	gen       uint64
	ttl       time.Duration
	lockTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemory(ttl, lockTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		carts:   make(map[string]memoryEntry),
		locks:   make(map[string]memoryLock),
		ttl:     ttl,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(sessionID).Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, sessionID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	if s.locked(sessionID) {
		return nil, ErrBusy
	}
	working := s.current(sessionID).Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.carts[cartKey(sessionID)] = memoryEntry{cart: working, expires: s.expiry(s.ttl)}
	return working.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartKey(sessionID))
	return nil
}

func (s *MemoryStore) Acquire(_ context.Context, sessionID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	if s.locked(sessionID) {
		return nil, ErrBusy
	}
	s.gen++
	gen := s.gen
	key := lockKey(sessionID)
	s.locks[key] = memoryLock{gen: gen, expires: s.expiry(s.lockTTL)}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if l, ok := s.locks[key]; ok && l.gen == gen {
				delete(s.locks, key)
			}
		})
	}, nil
}

// current returns the stored cart or a fresh one; callers hold mu.
func (s *MemoryStore) current(sessionID string) *cart.Cart {
	key := cartKey(sessionID)
	e, ok := s.carts[key]
	if !ok {
		return cart.New()
	}
	if expired(e.expires, s.now()) {
		delete(s.carts, key)
		return cart.New()
	}
	return e.cart
}

func (s *MemoryStore) locked(sessionID string) bool {
	key := lockKey(sessionID)
	l, ok := s.locks[key]
	if !ok {
		return false
	}
	if expired(l.expires, s.now()) {
		delete(s.locks, key)
		return false
	}
	return true
}

// sweep drops every expired cart and busy flag; callers hold mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for key, e := range s.carts {
		if expired(e.expires, now) {
			delete(s.carts, key)
		}
	}
	for key, l := range s.locks {
		if expired(l.expires, now) {
			delete(s.locks, key)
		}
	}
}

func expired(at, now time.Time) bool {
	return !at.IsZero() && !now.Before(at)
}

func (s *MemoryStore) expiry(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return s.now().Add(d)
}
