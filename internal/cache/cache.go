// Package cache memoizes per-user contact listings. Entries are tagged with
// the owning user so a write can drop every listing that user could observe
// as stale. The TTL is a performance bound only; correctness comes from
// write invalidation.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/rif/cache2go"

	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/storage"
)

// Listings is a read-through cache for contact listings.
type Listings struct {
	mu    sync.Mutex
	cache *cache2go.Cache
	// keys tracks which cache keys belong to which user so Invalidate can
	// drop them without scanning the whole cache.
	keys map[int64]map[string]struct{}
}

// NewListings creates a cache bounded by entries with the given expiry.
func NewListings(entries int, ttl time.Duration) *Listings {
	return &Listings{
		cache: cache2go.New(entries, ttl),
		keys:  make(map[int64]map[string]struct{}),
	}
}

// Key derives the cache key from the operation namespace and the
// user-scoped positional arguments of the listing call.
func Key(namespace string, userID int64, f storage.ContactFilter) string {
	return fmt.Sprintf("%s:%d:%d:%d:%d:%s:%s",
		namespace, userID, f.Limit, f.Offset, f.DaysToBirthday, f.Email, f.Fullname)
}

// Get returns the cached listing for key, if any.
func (l *Listings) Get(key string) ([]models.Contact, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	value, ok := l.cache.Get(key)
	if !ok {
		return nil, false
	}
	contacts, ok := value.([]models.Contact)
	return contacts, ok
}

// Set stores a listing under key and records the key against its user.
func (l *Listings) Set(userID int64, key string, contacts []models.Contact) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Set(key, contacts)
	if l.keys[userID] == nil {
		l.keys[userID] = make(map[string]struct{})
	}
	l.keys[userID][key] = struct{}{}
}

// Invalidate drops every cached listing recorded for the user.
func (l *Listings) Invalidate(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.keys[userID] {
		l.cache.Delete(key)
	}
	delete(l.keys, userID)
}
