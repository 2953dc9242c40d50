package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/gsatlink/pos-backend/pkg/db/models"
)

// Snapshot is the read-only catalog held in memory for a session. Quantity
// bounds can go stale relative to the authoritative store; a full reload on
// screen open plus a manual refresh is the only reconciliation.
type Snapshot struct {
	items    []models.CatalogItem
	byID     map[uuid.UUID]int
	LoadedAt time.Time
}

// NewSnapshot copies the provided items into an immutable snapshot.
func NewSnapshot(items []models.CatalogItem, loadedAt time.Time) *Snapshot {
	copied := make([]models.CatalogItem, len(items))
	copy(copied, items)
	byID := make(map[uuid.UUID]int, len(copied))
	for i, item := range copied {
		byID[item.ID] = i
	}
	return &Snapshot{items: copied, byID: byID, LoadedAt: loadedAt}
}

// Items returns the snapshot contents in load order.
func (s *Snapshot) Items() []models.CatalogItem {
	return s.items
}

// Len reports the number of items held.
func (s *Snapshot) Len() int {
	return len(s.items)
}

// ItemByID resolves an item from the snapshot.
func (s *Snapshot) ItemByID(id uuid.UUID) (models.CatalogItem, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return models.CatalogItem{}, false
	}
	return s.items[idx], true
}

// Candidates adapts the snapshot for the matcher, preserving load order.
func (s *Snapshot) Candidates() []ItemCandidate {
	out := make([]ItemCandidate, len(s.items))
	for i := range s.items {
		out[i] = ItemCandidate{Item: s.items[i]}
	}
	return out
}

// MatchItem resolves a canonical key against the snapshot.
func (s *Snapshot) MatchItem(key string) (models.CatalogItem, Outcome) {
	cand, outcome := Match(key, s.Candidates())
	return cand.Item, outcome
}

// ItemCandidate exposes a catalog item's comparable fields in the fixed
// priority order serial, stock code, barcode, extra codes, then name.
type ItemCandidate struct {
	Item models.CatalogItem
}

func (c ItemCandidate) ExactFields() []string {
	fields := make([]string, 0, 4+len(c.Item.ExtraCodes))
	fields = append(fields, deref(c.Item.SerialNo), c.Item.StockCode, deref(c.Item.Barcode))
	fields = append(fields, c.Item.ExtraCodes...)
	fields = append(fields, c.Item.Name)
	return fields
}

func (c ItemCandidate) PartialFields() []string {
	fields := make([]string, 0, 3+len(c.Item.ExtraCodes))
	fields = append(fields, deref(c.Item.SerialNo), c.Item.StockCode, deref(c.Item.Barcode))
	fields = append(fields, c.Item.ExtraCodes...)
	return fields
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
