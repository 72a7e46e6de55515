package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	domainRepo "github.com/sangkips/posadmin-api/internal/domain/repository"
)

// DefaultDraftTTL is how long an untouched draft lives, matching the dashboard idle timeout
const DefaultDraftTTL = 10 * time.Minute

var _ domainRepo.DraftStore = (*MemoryDraftStore)(nil)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryDraftStore keeps drafts in process memory. Drafts are stored
// serialized so callers never share state with the store.
type MemoryDraftStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryDraftStore creates an in-memory draft store
func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &MemoryDraftStore{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the draft and slides its expiry, or nil when missing or expired
func (s *MemoryDraftStore) Get(ctx context.Context, id uuid.UUID) (*entity.SaleDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	now := s.now()
	if !now.Before(entry.expiresAt) {
		delete(s.entries, id)
		return nil, nil
	}

	var draft entity.SaleDraft
	if err := json.Unmarshal(entry.payload, &draft); err != nil {
		return nil, err
	}

	entry.expiresAt = now.Add(s.ttl)
	s.entries[id] = entry
	return &draft, nil
}

// Save stores a snapshot of the draft and evicts expired entries
func (s *MemoryDraftStore) Save(ctx context.Context, draft *entity.SaleDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)
	s.entries[draft.ID] = memoryEntry{payload: payload, expiresAt: now.Add(s.ttl)}
	return nil
}

// Delete removes the draft; deleting a missing draft is not an error
func (s *MemoryDraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

// Len returns the number of stored drafts, including expired ones not yet evicted
func (s *MemoryDraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictExpired must be called with mu held
func (s *MemoryDraftStore) evictExpired(now time.Time) {
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}
