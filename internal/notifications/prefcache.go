package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atriumcare/carecoord-backend/pkg/db/models"
)

// preferenceCache is a process-local read-through cache of preference rows.
// Entries expire after the constructor-injected TTL and are replaced
// atomically on preference updates. Staleness across processes is accepted.
type preferenceCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uuid.UUID]preferenceEntry
	now     func() time.Time
}

type preferenceEntry struct {
	prefs     *models.NotificationPreference
	expiresAt time.Time
}

func newPreferenceCache(ttl time.Duration) *preferenceCache {
	return &preferenceCache{
		ttl:     ttl,
		entries: make(map[uuid.UUID]preferenceEntry),
		now:     time.Now,
	}
}

func (c *preferenceCache) get(userID uuid.UUID) (*models.NotificationPreference, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.prefs, true
}

func (c *preferenceCache) put(userID uuid.UUID, prefs *models.NotificationPreference) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[userID] = preferenceEntry{
		prefs:     prefs,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *preferenceCache) invalidate(userID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}
