// Package syncer keeps the local board in step with the shared store and
// turns ownership changes seen there into notifications.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/game"
	"github.com/chomp/streetartctf/internal/notify"
	"github.com/chomp/streetartctf/internal/remote"
	"github.com/chomp/streetartctf/internal/snapshot"
)

type Store interface {
	Captures(ctx context.Context) ([]remote.CaptureRecord, error)
}

type Board interface {
	ApplyRemote(ctx context.Context, view map[string]game.Ownership)
	Board() *game.Board
}

type Notifier interface {
	Push(n notify.Notification) int64
}

// SectorChange reports that control of an area moved.
type SectorChange struct {
	Area     string       `json:"area"`
	Previous chomp.TeamID `json:"previous,omitempty"`
	Current  chomp.TeamID `json:"current,omitempty"`
}

type Adapter struct {
	store   Store
	catalog *chomp.Catalog
	board   Board
	notes   Notifier
	changes <-chan struct{}
	poll    time.Duration
	logger  *slog.Logger

	mu          sync.Mutex
	onSector    []func(SectorChange)
	lastSync    time.Time
	prevOwners  map[string]chomp.TeamID
	prevSectors map[string]chomp.TeamID
}

// New returns an adapter that resyncs whenever changes fires and at
// least every poll interval.
func New(store Store, catalog *chomp.Catalog, board Board, notes Notifier, changes <-chan struct{}, poll time.Duration, logger *slog.Logger) *Adapter {
	return &Adapter{
		store:   store,
		catalog: catalog,
		board:   board,
		notes:   notes,
		changes: changes,
		poll:    poll,
		logger:  logger,
	}
}

// OnSectorChange registers fn for every change in area control.
func (a *Adapter) OnSectorChange(fn func(SectorChange)) {
	a.mu.Lock()
	a.onSector = append(a.onSector, fn)
	a.mu.Unlock()
}

// Run syncs once, then on every change signal and poll tick until ctx is
// cancelled.
func (a *Adapter) Run(ctx context.Context) error {
	a.syncLogged(ctx)

	ticker := time.NewTicker(a.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.changes:
			a.syncLogged(ctx)
		case <-ticker.C:
			a.syncLogged(ctx)
		}
	}
}

var ErrNeverSynced = errors.New("no successful sync yet")

// Check fails when no sync has succeeded within three poll intervals.
func (a *Adapter) Check(_ context.Context) error {
	a.mu.Lock()
	last := a.lastSync
	a.mu.Unlock()
	if last.IsZero() {
		return ErrNeverSynced
	}
	if age := time.Since(last); age > 3*a.poll {
		return fmt.Errorf("last sync %s ago", age.Round(time.Second))
	}
	return nil
}

func (a *Adapter) syncLogged(ctx context.Context) {
	if err := a.Sync(ctx); err != nil && ctx.Err() == nil {
		a.logger.Warn("remote sync failed", "error", err)
	}
}

// Sync reads the full capture snapshot and applies it. The first
// successful call only records a baseline.
func (a *Adapter) Sync(ctx context.Context) error {
	recs, err := a.store.Captures(ctx)
	if err != nil {
		return err
	}

	view := make(map[string]game.Ownership, len(recs))
	owners := make(map[string]chomp.TeamID, len(recs))
	byArt := make(map[string]remote.CaptureRecord, len(recs))
	for _, rec := range recs {
		art, ok := a.catalog.Get(rec.ArtID)
		if !ok {
			continue
		}
		status := art.Status
		if rec.StatusOverride != "" {
			status = rec.StatusOverride
		}
		view[rec.ArtID] = game.Ownership{Owner: rec.Team, Status: status, CapturedAt: rec.CapturedAt}
		if rec.Team != chomp.NoTeam {
			owners[rec.ArtID] = rec.Team
			byArt[rec.ArtID] = rec
		}
	}
	a.board.ApplyRemote(ctx, view)
	sectors := game.Controllers(game.Sectors(a.board.Board().Pieces()))

	a.mu.Lock()
	first := a.lastSync.IsZero()
	prevOwners, prevSectors := a.prevOwners, a.prevSectors
	a.lastSync = time.Now()
	a.prevOwners, a.prevSectors = owners, sectors
	listeners := append([]func(SectorChange){}, a.onSector...)
	a.mu.Unlock()

	if first {
		return nil
	}

	for _, ch := range snapshot.Diff(prevOwners, owners) {
		if ch.Kind == snapshot.Removed {
			continue
		}
		rec := byArt[ch.ID]
		art, _ := a.catalog.Get(ch.ID)
		a.notes.Push(notify.Notification{
			ArtID:        ch.ID,
			ArtName:      art.Name,
			Area:         art.Area,
			Team:         ch.Current,
			PlayerName:   rec.PlayerName,
			Points:       rec.Points,
			Streak:       rec.Streak,
			IsRecapture:  rec.IsRecapture,
			PreviousTeam: ch.Previous,
			At:           rec.CapturedAt,
		})
	}

	for _, ch := range snapshot.Diff(prevSectors, sectors) {
		if ch.Kind == snapshot.Removed {
			continue
		}
		if ch.Kind == snapshot.Added && ch.Current == chomp.NoTeam {
			continue
		}
		sc := SectorChange{Area: ch.ID, Previous: ch.Previous, Current: ch.Current}
		for _, fn := range listeners {
			fn(sc)
		}
	}
	return nil
}
