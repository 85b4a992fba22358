package repository

import (
	"context"
	"sync"
	"time"

	"carserve/internal/models"
)

// MemoryHoldRepository is the in-process fallback used when Redis is down.
type MemoryHoldRepository struct {
	mu         sync.Mutex
	holds      map[int64]memoryHold
	rateLimits sync.Map
	ttl        time.Duration
}

type memoryHold struct {
	hold      *models.SlotHold
	expiresAt time.Time
}

func NewMemoryHoldRepository(ttl time.Duration) *MemoryHoldRepository {
	return &MemoryHoldRepository{
		holds: make(map[int64]memoryHold),
		ttl:   ttl,
	}
}

func (r *MemoryHoldRepository) PlaceHold(ctx context.Context, hold *models.SlotHold) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.holds[hold.SlotID]; ok && now.Before(existing.expiresAt) {
		if existing.hold.CustomerID != hold.CustomerID {
			return ErrHoldTaken
		}
	}
	r.holds[hold.SlotID] = memoryHold{hold: hold, expiresAt: now.Add(r.ttl)}
	return nil
}

func (r *MemoryHoldRepository) GetHold(ctx context.Context, slotID int64) (*models.SlotHold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.holds[slotID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(r.holds, slotID)
		return nil, nil
	}
	return entry.hold, nil
}

func (r *MemoryHoldRepository) ReleaseHold(ctx context.Context, slotID, customerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.holds[slotID]; ok && entry.hold.CustomerID == customerID {
		delete(r.holds, slotID)
	}
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryHoldRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(userID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(userID, entry)
	return entry.count <= limit, nil
}
