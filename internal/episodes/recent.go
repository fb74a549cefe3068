package episodes

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"anistream/internal/store"
	"anistream/pkg/models"
)

// RecentLimit caps the most-recently-selected list.
const RecentLimit = 10

// RecentList is the newest-first list of episode selections, persisted as
// a JSON array under one storage key. Storage trouble never surfaces to
// callers: the in-memory list keeps working for the session.
type RecentList struct {
	mu      sync.Mutex
	store   *store.Store
	entries []models.RecentSelection
}

// NewRecentList loads whatever is persisted; unreadable or missing state
// starts the list empty.
func NewRecentList(ctx context.Context, st *store.Store) *RecentList {
	r := &RecentList{store: st}
	if st == nil {
		return r
	}

	raw, err := st.Get(ctx, store.KeyRecentClicks)
	if err != nil {
		log.Printf("[recent] load failed: %v", err)
		return r
	}
	if raw == "" {
		return r
	}
	if err := json.Unmarshal([]byte(raw), &r.entries); err != nil {
		log.Printf("[recent] discarding unparseable list: %v", err)
		r.entries = nil
	}
	if len(r.entries) > RecentLimit {
		r.entries = r.entries[:RecentLimit]
	}
	return r
}

// Record de-duplicates by exact (title, episode), prepends, caps at
// RecentLimit, and persists best-effort.
func (r *RecentList) Record(ctx context.Context, sel models.RecentSelection) {
	if sel.Timestamp.IsZero() {
		sel.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	kept := make([]models.RecentSelection, 0, len(r.entries)+1)
	kept = append(kept, sel)
	for _, e := range r.entries {
		if e.Title == sel.Title && e.Episode == sel.Episode {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > RecentLimit {
		kept = kept[:RecentLimit]
	}
	r.entries = kept
	snapshot := make([]models.RecentSelection, len(kept))
	copy(snapshot, kept)
	r.mu.Unlock()

	r.persist(ctx, snapshot)
}

func (r *RecentList) Entries() []models.RecentSelection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.RecentSelection, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *RecentList) persist(ctx context.Context, entries []models.RecentSelection) {
	if r.store == nil {
		return
	}
	b, err := json.Marshal(entries)
	if err != nil {
		log.Printf("[recent] encode failed: %v", err)
		return
	}
	if err := r.store.Set(ctx, store.KeyRecentClicks, string(b)); err != nil {
		log.Printf("[recent] persist failed: %v", err)
	}
}
