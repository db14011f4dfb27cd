package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterItem represents a single limiter with its last use
type limiterItem struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Store is a thread-safe registry of token buckets keyed by host or client IP.
// Entries idle for longer than the idle TTL are evicted.
type Store struct {
	data    map[string]*limiterItem
	mutex   sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// PerMinute converts a requests-per-minute budget into a rate.Limit.
// Zero or negative budgets disable limiting.
func PerMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(n) / 60.0)
}

// NewStore creates a limiter registry and starts the idle cleanup goroutine
func NewStore(limit rate.Limit, burst int, idleTTL time.Duration) *Store {
	if burst < 1 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = time.Hour
	}

	store := &Store{
		data:    make(map[string]*limiterItem),
		limit:   limit,
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	// Sweep idle entries every 5 minutes
	go store.cleanupIdle(5 * time.Minute)

	return store
}

// get returns the limiter for key, creating it on first use
func (s *Store) get(key string) *rate.Limiter {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	item, exists := s.data[key]
	if !exists {
		item = &limiterItem{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.data[key] = item
	}
	item.lastSeen = s.now()

	return item.limiter
}

// Allow reports whether an event for key may happen now
func (s *Store) Allow(key string) bool {
	return s.get(key).Allow()
}

// Wait blocks until an event for key is permitted or ctx is done
func (s *Store) Wait(ctx context.Context, key string) error {
	return s.get(key).Wait(ctx)
}

// Limited reports whether the store enforces any limit at all
func (s *Store) Limited() bool {
	return s.limit != rate.Inf
}

// Evict removes entries idle for longer than the idle TTL and returns how many were dropped
func (s *Store) Evict() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	evicted := 0
	for key, item := range s.data {
		if item.lastSeen.Before(cutoff) {
			delete(s.data, key)
			evicted++
		}
	}
	return evicted
}

// Size returns the current number of tracked keys
func (s *Store) Size() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.data)
}

// Stop terminates the cleanup goroutine
func (s *Store) Stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) cleanupIdle(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Evict()
		}
	}
}
