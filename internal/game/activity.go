package game

import (
	"slices"
	"sync"
	"time"

	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/scoring"
)

// ActivityLimit is how many capture events the activity feed keeps.
const ActivityLimit = 10

// CaptureEvent is published for every successful capture.
type CaptureEvent struct {
	ArtID          string          `json:"artId"`
	ArtName        string          `json:"artName"`
	Area           string          `json:"area"`
	Team           chomp.TeamID    `json:"team"`
	PlayerID       string          `json:"playerId"`
	PlayerName     string          `json:"playerName"`
	Points         int             `json:"points"`
	Bonuses        scoring.Bonuses `json:"bonuses"`
	Streak         int             `json:"streak"`
	IsFirstCapture bool            `json:"isFirstCapture"`
	IsRecapture    bool            `json:"isRecapture"`
	PreviousTeam   chomp.TeamID    `json:"previousTeam,omitempty"`
	At             time.Time       `json:"at"`
}

// Activity is a bounded list of recent captures, newest first.
type Activity struct {
	mu     sync.Mutex
	events []CaptureEvent
}

func (a *Activity) Add(ev CaptureEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = slices.Insert(a.events, 0, ev)
	if len(a.events) > ActivityLimit {
		a.events = a.events[:ActivityLimit]
	}
}

func (a *Activity) List() []CaptureEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]CaptureEvent, len(a.events))
	copy(out, a.events)
	return out
}
