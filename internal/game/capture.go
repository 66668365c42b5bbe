package game

import (
	"context"
	"slices"

	"github.com/chomp/streetartctf/internal/achievement"
	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/localstore"
	"github.com/chomp/streetartctf/internal/remote"
	"github.com/chomp/streetartctf/internal/scoring"
)

// CaptureResult is the outcome of a capture attempt. Rejections carry
// only Message.
type CaptureResult struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message,omitempty"`
	Art          *chomp.ArtPiece      `json:"art,omitempty"`
	Points       int                  `json:"points,omitempty"`
	Bonuses      scoring.Bonuses      `json:"bonuses,omitempty"`
	Streak       int                  `json:"streak,omitempty"`
	PreviousTeam chomp.TeamID         `json:"previousTeam,omitempty"`
	Unlocked     []achievement.ID     `json:"unlocked,omitempty"`
	Player       *chomp.PlayerProfile `json:"player,omitempty"`
}

func rejected(msg string) CaptureResult {
	return CaptureResult{Message: msg}
}

// Capture claims artID for the player's team. loc is the player's
// position when known. Rejections leave every piece of state untouched.
func (e *Engine) Capture(ctx context.Context, playerID, artID string, loc *chomp.Location) CaptureResult {
	res, ev, observers := e.capture(ctx, playerID, artID, loc)
	if ev != nil {
		for _, fn := range observers {
			fn(*ev)
		}
	}
	return res
}

func (e *Engine) capture(ctx context.Context, playerID, artID string, loc *chomp.Location) (CaptureResult, *CaptureEvent, []Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ps := e.player(ctx, playerID)
	team := ps.profile.Team
	if team == chomp.NoTeam {
		return rejected(MsgJoinTeam), nil, nil
	}
	art, ok := e.board.Art(artID)
	if !ok {
		return rejected(MsgArtNotFound), nil, nil
	}
	if art.CapturedBy == team {
		return rejected(MsgAlreadyYours), nil, nil
	}
	if art.Status == chomp.StatusGhost {
		return rejected(MsgNoLongerExists), nil, nil
	}

	now := e.now()
	score := scoring.Compute(art, ps.profile, loc, now)
	previous := art.CapturedBy

	e.board.setOwner(artID, team, now)
	art.CapturedBy = team

	p := &ps.profile
	if loc != nil && p.LastCaptureLocation != nil {
		p.DistanceTraveled += chomp.Distance(*p.LastCaptureLocation, *loc)
	}
	p.Score += score.TotalPoints
	p.Streak++
	p.MaxStreak = max(p.MaxStreak, p.Streak)
	at := now
	p.LastCaptureAt = &at
	if loc != nil {
		l := *loc
		p.LastCaptureLocation = &l
	}
	p.TotalCaptures++
	if score.IsRecapture {
		p.Recaptures++
	}
	if score.IsFirstCapture {
		p.FirstCaptures++
	}
	if !slices.Contains(p.CapturedArt, artID) {
		p.CapturedArt = append(p.CapturedArt, artID)
	}
	p.VisitArea(art.Area)

	newly := achievement.NewlyUnlocked(*p, ps.unlocked)
	ps.unlocked = ps.unlocked.Union(newly...)

	e.save(ctx, playerID, localstore.KeyPlayer, ps.profile)
	e.save(ctx, playerID, localstore.KeyAchievements, ps.unlocked)
	e.saveBackup(ctx)

	ev := CaptureEvent{
		ArtID:          art.ID,
		ArtName:        art.Name,
		Area:           art.Area,
		Team:           team,
		PlayerID:       playerID,
		PlayerName:     p.Name,
		Points:         score.TotalPoints,
		Bonuses:        score.Bonuses,
		Streak:         p.Streak,
		IsFirstCapture: score.IsFirstCapture,
		IsRecapture:    score.IsRecapture,
		PreviousTeam:   previous,
		At:             now,
	}
	e.publishCapture(ctx, ev, p.Clone())
	e.activity.Add(ev)

	profile := p.Clone()
	return CaptureResult{
		Success:      true,
		Art:          &art,
		Points:       score.TotalPoints,
		Bonuses:      score.Bonuses,
		Streak:       p.Streak,
		PreviousTeam: previous,
		Unlocked:     newly,
		Player:       &profile,
	}, &ev, slices.Clone(e.observers)
}

// publishCapture sends the capture to the shared store without waiting.
// e.mu must be held.
func (e *Engine) publishCapture(ctx context.Context, ev CaptureEvent, p chomp.PlayerProfile) {
	if e.remote != nil {
		rec := remote.CaptureRecord{
			ArtID:          ev.ArtID,
			Team:           ev.Team,
			PlayerID:       ev.PlayerID,
			PlayerName:     ev.PlayerName,
			Points:         ev.Points,
			Streak:         ev.Streak,
			IsRecapture:    ev.IsRecapture,
			IsFirstCapture: ev.IsFirstCapture,
			CapturedAt:     ev.At.UTC(),
		}
		e.background(ctx, "record capture", func(ctx context.Context) error {
			err := e.remote.RecordCapture(ctx, rec)
			if err != nil {
				e.board.forget(rec.ArtID, ev.At)
			}
			return err
		})
		e.background(ctx, "add team score", func(ctx context.Context) error {
			return e.remote.AddTeamScore(ctx, ev.Team, ev.Points)
		})
		e.mirror(ctx, p)
	}
	if e.cooldowns != nil && e.cooldownTTL > 0 {
		e.background(ctx, "put cooldown", func(ctx context.Context) error {
			return e.cooldowns.PutCooldown(ctx, ev.PlayerID, ev.ArtID, e.cooldownTTL)
		})
	}
}

// DiscoverResult is the outcome of a solo-mode discovery.
type DiscoverResult struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message,omitempty"`
	Art      *chomp.ArtPiece      `json:"art,omitempty"`
	Points   int                  `json:"points,omitempty"`
	Unlocked []achievement.ID     `json:"unlocked,omitempty"`
	Player   *chomp.PlayerProfile `json:"player,omitempty"`
}

// Discover adds artID to the player's personal collection. It needs no
// team and leaves the board alone; each piece can be discovered once.
func (e *Engine) Discover(ctx context.Context, playerID, artID string) DiscoverResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	ps := e.player(ctx, playerID)
	art, ok := e.board.Art(artID)
	if !ok {
		return DiscoverResult{Message: MsgArtNotFound}
	}
	if art.Status == chomp.StatusGhost {
		return DiscoverResult{Message: MsgNoLongerExists}
	}
	if slices.Contains(ps.discovered, artID) {
		return DiscoverResult{Message: MsgAlreadyDiscovered}
	}

	points := art.Size.Points()
	ps.discovered = append(ps.discovered, artID)
	p := &ps.profile
	p.Discoveries++
	p.Score += points
	p.VisitArea(art.Area)

	newly := achievement.NewlyUnlocked(*p, ps.unlocked)
	ps.unlocked = ps.unlocked.Union(newly...)

	e.save(ctx, playerID, localstore.KeyPlayer, ps.profile)
	e.save(ctx, playerID, localstore.KeyDiscoveries, ps.discovered)
	e.save(ctx, playerID, localstore.KeyAchievements, ps.unlocked)
	e.mirror(ctx, *p)

	profile := p.Clone()
	return DiscoverResult{
		Success:  true,
		Art:      &art,
		Points:   points,
		Unlocked: newly,
		Player:   &profile,
	}
}
