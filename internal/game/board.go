package game

import (
	"maps"
	"sync"
	"time"

	"github.com/chomp/streetartctf/internal/chomp"
)

// Ownership is the mutable part of an art piece.
// CapturedAt is the time of the capture that set Owner, zero when
// unknown.
type Ownership struct {
	Owner      chomp.TeamID    `json:"owner,omitempty"`
	Status     chomp.ArtStatus `json:"status"`
	CapturedAt time.Time       `json:"capturedAt,omitzero"`
}

// Board is the ownership view of the catalog. At most one team owns a
// piece; every change replaces the owner outright.
//
// Captures made here stay pending until the shared store shows a
// capture of the same piece at least as recent, so a sync that read the
// store before the write landed cannot undo them.
type Board struct {
	catalog *chomp.Catalog

	mu      sync.RWMutex
	state   map[string]Ownership
	pending map[string]time.Time
}

func NewBoard(c *chomp.Catalog) *Board {
	b := &Board{
		catalog: c,
		state:   make(map[string]Ownership, c.Len()),
		pending: make(map[string]time.Time),
	}
	for _, p := range c.All() {
		b.state[p.ID] = Ownership{Status: p.Status}
	}
	return b
}

// Art returns the catalog piece with its current owner and status.
func (b *Board) Art(id string) (chomp.ArtPiece, bool) {
	p, ok := b.catalog.Get(id)
	if !ok {
		return chomp.ArtPiece{}, false
	}
	b.mu.RLock()
	o := b.state[id]
	b.mu.RUnlock()
	p.CapturedBy = o.Owner
	p.Status = o.Status
	return p, true
}

// Pieces returns every piece in catalog order.
func (b *Board) Pieces() []chomp.ArtPiece {
	pieces := b.catalog.All()
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := range pieces {
		o := b.state[pieces[i].ID]
		pieces[i].CapturedBy = o.Owner
		pieces[i].Status = o.Status
	}
	return pieces
}

func (b *Board) setOwner(id string, team chomp.TeamID, at time.Time) {
	b.mu.Lock()
	o := b.state[id]
	o.Owner = team
	o.CapturedAt = at
	b.state[id] = o
	b.pending[id] = at
	b.mu.Unlock()
}

// forget drops the pending capture of id made at at, if it is still the
// latest one. The next ApplyRemote then takes the store's owner.
func (b *Board) forget(id string, at time.Time) {
	b.mu.Lock()
	if p, ok := b.pending[id]; ok && p.Equal(at) {
		delete(b.pending, id)
	}
	b.mu.Unlock()
}

// Pending reports whether id has a local capture the store has not
// shown yet.
func (b *Board) Pending(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.pending[id]
	return ok
}

// Snapshot copies the current ownership of every piece.
func (b *Board) Snapshot() map[string]Ownership {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.state)
}

// ApplyRemote replaces the board with view. Pieces missing from view
// revert to unowned with their catalog status; ids outside the catalog
// are ignored. A pending local capture keeps its owner until view holds
// a capture of that piece at or after it; the status still follows view.
func (b *Board) ApplyRemote(view map[string]Ownership) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.catalog.All() {
		o, ok := view[p.ID]
		if !ok {
			o = Ownership{Status: p.Status}
		}
		if o.Status == "" {
			o.Status = p.Status
		}
		if at, ok := b.pending[p.ID]; ok {
			if o.CapturedAt.Before(at) {
				cur := b.state[p.ID]
				cur.Status = o.Status
				b.state[p.ID] = cur
				continue
			}
			delete(b.pending, p.ID)
		}
		b.state[p.ID] = o
	}
}
