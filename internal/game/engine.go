// Package game owns the live game state: the ownership board, player
// profiles and the capture and discovery rules that mutate them.
package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/chomp/streetartctf/internal/achievement"
	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/localstore"
	"github.com/chomp/streetartctf/internal/remote"
)

// Rejection messages shown to players.
const (
	MsgJoinTeam          = "Join a team first!"
	MsgArtNotFound       = "Art not found"
	MsgAlreadyYours      = "This art is already yours!"
	MsgNoLongerExists    = "This art no longer exists"
	MsgAlreadyDiscovered = "Already discovered"
)

const maxNameLen = 24

var (
	ErrInvalidName   = errors.New("invalid name")
	ErrAlreadyOnTeam = errors.New("already on a team")
	ErrUnknownTeam   = errors.New("unknown team")
	ErrInvalidMode   = errors.New("invalid game mode")
)

// Remote is the subset of the shared store the engine writes to.
type Remote interface {
	RecordCapture(ctx context.Context, rec remote.CaptureRecord) error
	AddTeamScore(ctx context.Context, team chomp.TeamID, points int) error
	UpsertPlayer(ctx context.Context, p remote.PlayerAggregate) error
	DeletePlayer(ctx context.Context, id string) error
}

// Observer receives capture events after the engine lock is released.
type Observer func(CaptureEvent)

type Config struct {
	Catalog *chomp.Catalog
	Local   localstore.Store
	// Remote and Cooldowns are optional.
	Remote      Remote
	Cooldowns   remote.Cooldowns
	CooldownTTL time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

// Engine serialises every mutation behind one mutex, so there is a
// single writer for the board and all profiles.
type Engine struct {
	catalog     *chomp.Catalog
	local       localstore.Store
	remote      Remote
	cooldowns   remote.Cooldowns
	cooldownTTL time.Duration
	logger      *slog.Logger
	now         func() time.Time

	board    *Board
	activity Activity

	mu        sync.Mutex
	players   map[string]*playerState
	observers []Observer

	writes *writer
}

type playerState struct {
	profile    chomp.PlayerProfile
	mode       chomp.GameMode
	unlocked   achievement.Set
	discovered []string
}

// PlayerView is a read-only copy of everything the engine knows about a
// player.
type PlayerView struct {
	Profile    chomp.PlayerProfile `json:"profile"`
	Mode       chomp.GameMode      `json:"mode"`
	Unlocked   achievement.Set     `json:"unlocked"`
	Discovered []string            `json:"discovered"`
}

func (ps *playerState) view() PlayerView {
	return PlayerView{
		Profile:    ps.profile.Clone(),
		Mode:       ps.mode,
		Unlocked:   ps.unlocked,
		Discovered: append([]string{}, ps.discovered...),
	}
}

// NewEngine builds an engine and restores the ownership backup from the
// local store, if one exists.
func NewEngine(ctx context.Context, cfg Config) *Engine {
	e := &Engine{
		catalog:     cfg.Catalog,
		local:       cfg.Local,
		remote:      cfg.Remote,
		cooldowns:   cfg.Cooldowns,
		cooldownTTL: cfg.CooldownTTL,
		logger:      cfg.Logger,
		now:         cfg.Now,
		board:       NewBoard(cfg.Catalog),
		players:     make(map[string]*playerState),
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.writes = &writer{logger: e.logger}

	var backup map[string]Ownership
	err := e.local.Load(ctx, localstore.BoardOwner, localstore.KeyCapturesBackup, &backup)
	switch {
	case errors.Is(err, localstore.ErrNotFound):
	case err != nil:
		e.logger.Warn("loading capture backup", "error", err)
	default:
		e.board.ApplyRemote(backup)
	}
	return e
}

// NewPlayerID returns a fresh random player id.
func NewPlayerID() string { return uuid.NewString() }

func (e *Engine) Board() *Board { return e.board }

func (e *Engine) Activity() []CaptureEvent { return e.activity.List() }

// Observe registers fn for every future capture event.
func (e *Engine) Observe(fn Observer) {
	e.mu.Lock()
	e.observers = append(e.observers, fn)
	e.mu.Unlock()
}

// Wait blocks until every queued remote write has finished.
func (e *Engine) Wait() { e.writes.wait() }

// ApplyRemote merges a remote ownership view into the board and refreshes
// the local backup.
func (e *Engine) ApplyRemote(ctx context.Context, view map[string]Ownership) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.board.ApplyRemote(view)
	e.saveBackup(ctx)
}

// Player returns the profile for id, creating an empty one on first use.
func (e *Engine) Player(ctx context.Context, id string) PlayerView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.player(ctx, id).view()
}

// player loads or creates the state for id. e.mu must be held.
func (e *Engine) player(ctx context.Context, id string) *playerState {
	if ps, ok := e.players[id]; ok {
		return ps
	}
	ps := &playerState{profile: chomp.NewPlayer(id), mode: chomp.ModeTeam}
	e.load(ctx, id, localstore.KeyPlayer, &ps.profile)
	e.load(ctx, id, localstore.KeyGameMode, &ps.mode)
	e.load(ctx, id, localstore.KeyAchievements, &ps.unlocked)
	e.load(ctx, id, localstore.KeyDiscoveries, &ps.discovered)

	ps.profile.ID = id
	if ps.profile.CapturedArt == nil {
		ps.profile.CapturedArt = []string{}
	}
	if ps.profile.AreasVisited == nil {
		ps.profile.AreasVisited = []string{}
	}
	if !ps.mode.Valid() {
		ps.mode = chomp.ModeTeam
	}
	e.players[id] = ps
	return ps
}

// load fills dest from the local store. Missing or unreadable entries
// leave dest at its default.
func (e *Engine) load(ctx context.Context, owner string, key localstore.Key, dest any) {
	err := e.local.Load(ctx, owner, key, dest)
	if err != nil && !errors.Is(err, localstore.ErrNotFound) {
		e.logger.Warn("loading local state", "player", owner, "key", key, "error", err)
	}
}

func (e *Engine) save(ctx context.Context, owner string, key localstore.Key, v any) {
	if err := e.local.Save(ctx, owner, key, v); err != nil {
		e.logger.Warn("saving local state", "player", owner, "key", key, "error", err)
	}
}

func (e *Engine) saveBackup(ctx context.Context) {
	owners := make(map[string]Ownership)
	for id, o := range e.board.Snapshot() {
		if o.Owner != chomp.NoTeam {
			owners[id] = o
		}
	}
	e.save(ctx, localstore.BoardOwner, localstore.KeyCapturesBackup, owners)
}

// SetName renames a player. Names are trimmed and must be 1 to 24
// characters.
func (e *Engine) SetName(ctx context.Context, id, name string) (PlayerView, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return PlayerView{}, ErrInvalidName
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	ps := e.player(ctx, id)
	ps.profile.Name = name
	e.save(ctx, id, localstore.KeyPlayer, ps.profile)
	e.mirror(ctx, ps.profile)
	return ps.view(), nil
}

// JoinTeam assigns a team. A player's team can be chosen only once.
func (e *Engine) JoinTeam(ctx context.Context, id string, team chomp.TeamID) (PlayerView, error) {
	if _, ok := chomp.LookupTeam(team); !ok {
		return PlayerView{}, ErrUnknownTeam
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	ps := e.player(ctx, id)
	if ps.profile.Team != chomp.NoTeam {
		return PlayerView{}, ErrAlreadyOnTeam
	}
	ps.profile.Team = team
	e.save(ctx, id, localstore.KeyPlayer, ps.profile)
	e.mirror(ctx, ps.profile)
	return ps.view(), nil
}

func (e *Engine) SetMode(ctx context.Context, id string, mode chomp.GameMode) (PlayerView, error) {
	if !mode.Valid() {
		return PlayerView{}, ErrInvalidMode
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	ps := e.player(ctx, id)
	ps.mode = mode
	e.save(ctx, id, localstore.KeyGameMode, mode)
	return ps.view(), nil
}

// Reset wipes a player's profile, discoveries, mode and achievements.
// The id is kept.
func (e *Engine) Reset(ctx context.Context, id string) PlayerView {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.local.Clear(ctx, id); err != nil {
		e.logger.Warn("clearing local state", "player", id, "error", err)
	}
	ps := &playerState{profile: chomp.NewPlayer(id), mode: chomp.ModeTeam}
	e.players[id] = ps

	if e.remote != nil {
		e.background(ctx, "delete player", func(ctx context.Context) error {
			err := e.remote.DeletePlayer(ctx, id)
			if errors.Is(err, remote.ErrNotFound) {
				return nil
			}
			return err
		})
	}
	return ps.view()
}

// CooldownRemaining reports how long until id may scan artID again. It
// is informational only; captures do not check it.
func (e *Engine) CooldownRemaining(ctx context.Context, id, artID string) time.Duration {
	if e.cooldowns == nil {
		return 0
	}
	d, err := e.cooldowns.CooldownRemaining(ctx, id, artID)
	if err != nil {
		e.logger.Warn("reading cooldown", "player", id, "art", artID, "error", err)
		return 0
	}
	return d
}

// mirror publishes the public aggregate of p once it has a name and a
// team. e.mu must be held.
func (e *Engine) mirror(ctx context.Context, p chomp.PlayerProfile) {
	if e.remote == nil || p.Name == "" || p.Team == chomp.NoTeam {
		return
	}
	agg := remote.PlayerAggregate{
		ID:            p.ID,
		Name:          p.Name,
		Team:          p.Team,
		Score:         p.Score,
		TotalCaptures: p.TotalCaptures,
		MaxStreak:     p.MaxStreak,
		Discoveries:   p.Discoveries,
		UpdatedAt:     e.now().UTC(),
	}
	e.background(ctx, "upsert player", func(ctx context.Context) error {
		return e.remote.UpsertPlayer(ctx, agg)
	})
}

// background queues fn behind every earlier remote write. Failures are
// logged and otherwise ignored.
func (e *Engine) background(ctx context.Context, op string, fn func(context.Context) error) {
	e.writes.enqueue(ctx, op, fn)
}
