// Package chomp defines the core domain types of the street art game.
// It has no external dependencies.
package chomp

import (
	"slices"
	"time"
)

type SizeTier string

const (
	SizeTiny   SizeTier = "tiny"
	SizeSmall  SizeTier = "small"
	SizeMedium SizeTier = "medium"
	SizeLarge  SizeTier = "large"
)

var sizePoints = map[SizeTier]int{
	SizeTiny:   25,
	SizeSmall:  50,
	SizeMedium: 100,
	SizeLarge:  200,
}

// Points is the base value of capturing a piece of this size.
// Unknown tiers are worth nothing.
func (s SizeTier) Points() int { return sizePoints[s] }

func (s SizeTier) Valid() bool {
	_, ok := sizePoints[s]
	return ok
}

type ArtStatus string

const (
	StatusActive ArtStatus = "active"
	StatusGhost  ArtStatus = "ghost"
)

func (s ArtStatus) Valid() bool { return s == StatusActive || s == StatusGhost }

type TeamID string

const (
	NoTeam   TeamID = ""
	TeamRed  TeamID = "red"
	TeamBlue TeamID = "blue"
)

type Team struct {
	ID    TeamID `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

var teams = []Team{
	{ID: TeamRed, Name: "Red Chompers", Color: "#ef4444"},
	{ID: TeamBlue, Name: "Blue Chompers", Color: "#3b82f6"},
}

// Teams returns the team definitions in display order.
func Teams() []Team { return slices.Clone(teams) }

func LookupTeam(id TeamID) (Team, bool) {
	for _, t := range teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

type GameMode string

const (
	ModeTeam GameMode = "team"
	ModeSolo GameMode = "solo"
)

func (m GameMode) Valid() bool { return m == ModeTeam || m == ModeSolo }

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ArtPiece struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Location   Location  `json:"location"`
	Size       SizeTier  `json:"size"`
	Status     ArtStatus `json:"status"`
	Area       string    `json:"area"`
	CapturedBy TeamID    `json:"capturedBy,omitempty"`
}

type PlayerProfile struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Team                TeamID     `json:"team,omitempty"`
	Score               int        `json:"score"`
	CapturedArt         []string   `json:"capturedArt"`
	Streak              int        `json:"streak"`
	MaxStreak           int        `json:"maxStreak"`
	TotalCaptures       int        `json:"totalCaptures"`
	Recaptures          int        `json:"recaptures"`
	FirstCaptures       int        `json:"firstCaptures"`
	LastCaptureAt       *time.Time `json:"lastCaptureAt,omitempty"`
	LastCaptureLocation *Location  `json:"lastCaptureLocation,omitempty"`
	AreasVisited        []string   `json:"areasVisited"`
	Discoveries         int        `json:"discoveries"`
	DistanceTraveled    float64    `json:"distanceTraveled"`
}

// NewPlayer returns an empty profile for id.
func NewPlayer(id string) PlayerProfile {
	return PlayerProfile{
		ID:           id,
		CapturedArt:  []string{},
		AreasVisited: []string{},
	}
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (p PlayerProfile) Clone() PlayerProfile {
	c := p
	c.CapturedArt = slices.Clone(p.CapturedArt)
	c.AreasVisited = slices.Clone(p.AreasVisited)
	if p.LastCaptureAt != nil {
		t := *p.LastCaptureAt
		c.LastCaptureAt = &t
	}
	if p.LastCaptureLocation != nil {
		l := *p.LastCaptureLocation
		c.LastCaptureLocation = &l
	}
	return c
}

// VisitArea records area once; it reports whether the area was new.
func (p *PlayerProfile) VisitArea(area string) bool {
	if area == "" || slices.Contains(p.AreasVisited, area) {
		return false
	}
	p.AreasVisited = append(p.AreasVisited, area)
	return true
}
