// Package saved maintains the set of properties the current user has
// saved. Mutations are optimistic but always reconciled against the
// backend's authoritative list, and an insert is rolled back when the
// save request itself fails.
package saved

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/agentmira/mira-go/internal/api"
	"github.com/agentmira/mira-go/internal/logger"
	"github.com/agentmira/mira-go/internal/property"
)

// SaveError is a save or unsave failure carrying the backend's detail
// message when one was provided.
type SaveError struct {
	Message string
}

func (e *SaveError) Error() string { return e.Message }

// Gateway is the subset of the API client the tracker depends on; it is
// easy to mock in tests.
type Gateway interface {
	SaveProperty(ctx context.Context, req api.SaveRequest) (*api.SaveResponse, error)
	SavedProperties(ctx context.Context) ([]property.Record, error)
	UnsaveProperty(ctx context.Context, id string) error
}

// LookupFunc resolves best-effort property data for an id, typically from
// the chat transcript.
type LookupFunc func(id string) (property.Property, bool)

// Result reports how a save concluded.
type Result struct {
	// AlreadySaved is true when the property was in the set before the
	// call, either locally or per the backend.
	AlreadySaved bool
}

// Tracker tracks the saved-property set for the authenticated user.
type Tracker struct {
	gw     Gateway
	lookup LookupFunc

	mu  sync.Mutex
	set map[string]property.Property
}

// NewTracker creates a Tracker. lookup may be nil when no transcript is
// available to mine for property data.
func NewTracker(gw Gateway, lookup LookupFunc) *Tracker {
	return &Tracker{gw: gw, lookup: lookup, set: make(map[string]property.Property)}
}

// IsSaved reports whether id is in the saved set.
func (t *Tracker) IsSaved(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.set[id]
	return ok
}

// Save persists a property. An id already in the set is an informational
// no-op. Otherwise the id is inserted optimistically, the save request is
// issued with best-effort property data, and the set is replaced with the
// backend's authoritative list. A failed request rolls the insert back.
func (t *Tracker) Save(ctx context.Context, id string, prop *property.Property) (Result, error) {
	if t.IsSaved(id) {
		return Result{AlreadySaved: true}, nil
	}

	data := property.Property{ID: id}
	switch {
	case prop != nil:
		data = *prop
	case t.lookup != nil:
		if found, ok := t.lookup(id); ok {
			data = found
		}
	}

	req := api.SaveRequest{PropertyID: id}
	if data.Title != "" || data.Price != "" {
		req.PropertyData = data.ToBackend()
	}

	t.mu.Lock()
	t.set[id] = data
	t.mu.Unlock()

	resp, err := t.gw.SaveProperty(ctx, req)
	if err != nil {
		t.mu.Lock()
		delete(t.set, id)
		t.mu.Unlock()
		return Result{}, &SaveError{Message: saveMessage(err, "Failed to save property")}
	}

	// Reconcile with the backend; the optimistic entry stands if the
	// refresh itself fails.
	if err := t.Refresh(ctx); err != nil {
		logger.L.Warn("saved-list refresh after save failed", "id", id, "error", err)
	}

	return Result{AlreadySaved: resp.AlreadySaved}, nil
}

// Unsave removes a property from the saved list. An id not in the set is
// a safe no-op. The local entry is removed only after the backend accepts
// the delete.
func (t *Tracker) Unsave(ctx context.Context, id string) error {
	if !t.IsSaved(id) {
		return nil
	}

	if err := t.gw.UnsaveProperty(ctx, id); err != nil {
		return &SaveError{Message: saveMessage(err, "Failed to remove property from saved list")}
	}

	t.mu.Lock()
	delete(t.set, id)
	t.mu.Unlock()
	return nil
}

// Refresh replaces the local set with the backend's authoritative list.
func (t *Tracker) Refresh(ctx context.Context) error {
	recs, err := t.gw.SavedProperties(ctx)
	if err != nil {
		return &SaveError{Message: saveMessage(err, "Failed to load saved properties")}
	}

	next := make(map[string]property.Property, len(recs))
	for _, p := range property.FromBackendList(recs) {
		next[p.ID] = p
	}

	t.mu.Lock()
	t.set = next
	t.mu.Unlock()
	return nil
}

// Clear empties the local set. Called on logout.
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.set = make(map[string]property.Property)
	t.mu.Unlock()
}

// List returns the saved properties ordered by id for stable rendering.
func (t *Tracker) List() []property.Property {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]property.Property, 0, len(t.set))
	for _, p := range t.set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func saveMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
