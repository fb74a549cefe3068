package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"anistream/internal/store"
)

// Tracker keeps watched seconds per (title, episode) as one JSON map in
// the client-state store, keyed "titleID:episode". Updates are
// read-modify-write; concurrent writers race and the last one wins, same
// as the storage it replaces.
type Tracker struct {
	Store *store.Store
}

func NewTracker(st *store.Store) *Tracker {
	return &Tracker{Store: st}
}

func progressKey(titleID string, episode int) string {
	return titleID + ":" + strconv.Itoa(episode)
}

func (t *Tracker) load(ctx context.Context) (map[string]float64, error) {
	raw, err := t.Store.Get(ctx, store.KeyWatchProgress)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		// unreadable history degrades to a fresh map
		return make(map[string]float64), nil
	}
	return out, nil
}

// Seconds returns 0 for unseen episodes.
func (t *Tracker) Seconds(ctx context.Context, titleID string, episode int) (float64, error) {
	m, err := t.load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load progress: %w", err)
	}
	return m[progressKey(titleID, episode)], nil
}

// ForTitle returns episode -> seconds for one title.
func (t *Tracker) ForTitle(ctx context.Context, titleID string) (map[int]float64, error) {
	m, err := t.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	out := make(map[int]float64)
	prefix := titleID + ":"
	for k, v := range m {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		ep, err := strconv.Atoi(k[len(prefix):])
		if err != nil {
			continue
		}
		out[ep] = v
	}
	return out, nil
}

func (t *Tracker) Set(ctx context.Context, titleID string, episode int, seconds float64) error {
	m, err := t.load(ctx)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}

	m[progressKey(titleID, episode)] = seconds

	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := t.Store.Set(ctx, store.KeyWatchProgress, string(b)); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
