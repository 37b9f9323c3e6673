// Package memory implements the long-term semantic memory store: it
// persists short natural-language facts with their embeddings, answers
// similarity searches, and periodically removes near-duplicate facts.
package memory

import (
	"sync"
	"time"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/policy"
)

// DefaultTopK is the number of search results when the caller does not
// specify one
const DefaultTopK = 5

// UseCase provides memory store operations. It owns a process-wide
// collection cache keyed by storage path and a per-user-key mutex that
// serializes every load-modify-save sequence, so concurrent operations
// on the same user cannot lose writes. The cache is unbounded, has no
// expiry, and is not shared across processes; it only avoids redundant
// storage round-trips within one running process.
type UseCase struct {
	storage adapter.Storage
	gemini  adapter.Gemini
	gate    *policy.Gate
	now     func() time.Time

	cacheMu sync.Mutex
	cache   map[string]*model.MemoryCollection

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithPolicy sets a Rego gate evaluated before a memory is stored
func WithPolicy(gate *policy.Gate) Option {
	return func(u *UseCase) {
		u.gate = gate
	}
}

// WithClock overrides the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(u *UseCase) {
		u.now = now
	}
}

// New creates a new memory UseCase instance
func New(storage adapter.Storage, gemini adapter.Gemini, opts ...Option) *UseCase {
	u := &UseCase{
		storage: storage,
		gemini:  gemini,
		now:     time.Now,
		cache:   make(map[string]*model.MemoryCollection),
		locks:   make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// lockUser acquires the mutex for the given user key and returns its
// unlock function. One mutex per key lives for the process lifetime,
// same as the collection cache.
func (u *UseCase) lockUser(userKey string) func() {
	u.locksMu.Lock()
	mu, ok := u.locks[userKey]
	if !ok {
		mu = &sync.Mutex{}
		u.locks[userKey] = mu
	}
	u.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (u *UseCase) cacheGet(path string) (*model.MemoryCollection, bool) {
	u.cacheMu.Lock()
	defer u.cacheMu.Unlock()
	col, ok := u.cache[path]
	return col, ok
}

func (u *UseCase) cachePut(path string, col *model.MemoryCollection) {
	u.cacheMu.Lock()
	defer u.cacheMu.Unlock()
	u.cache[path] = col
}

func (u *UseCase) cacheEvict(path string) {
	u.cacheMu.Lock()
	defer u.cacheMu.Unlock()
	delete(u.cache, path)
}
