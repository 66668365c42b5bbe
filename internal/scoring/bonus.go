package scoring

import (
	"encoding/json"
	"fmt"
)

type BonusKind string

const (
	KindStreak       BonusKind = "streak"
	KindRecapture    BonusKind = "recapture"
	KindFirstCapture BonusKind = "first_capture"
	KindSpeed        BonusKind = "speed"
	KindDistance     BonusKind = "distance"
)

// Bonus is one itemised addition to a capture's base points. The set of
// implementations is closed: only the types in this file satisfy it.
type Bonus interface {
	Kind() BonusKind
	Label() string
	Value() int
	sealed()
}

type StreakBonus struct {
	Streak int
	Points int
}

type RecaptureBonus struct {
	Points int
}

type FirstCaptureBonus struct {
	Points int
}

type SpeedBonus struct {
	Minutes float64
	Points  int
}

type DistanceBonus struct {
	Meters float64
	Points int
}

func (StreakBonus) Kind() BonusKind       { return KindStreak }
func (RecaptureBonus) Kind() BonusKind    { return KindRecapture }
func (FirstCaptureBonus) Kind() BonusKind { return KindFirstCapture }
func (SpeedBonus) Kind() BonusKind        { return KindSpeed }
func (DistanceBonus) Kind() BonusKind     { return KindDistance }

func (b StreakBonus) Label() string     { return fmt.Sprintf("Streak x%d", b.Streak) }
func (RecaptureBonus) Label() string    { return "Recapture" }
func (FirstCaptureBonus) Label() string { return "First capture" }
func (SpeedBonus) Label() string        { return "Speed" }
func (b DistanceBonus) Label() string   { return fmt.Sprintf("Explorer %dm", int(b.Meters)) }

func (b StreakBonus) Value() int       { return b.Points }
func (b RecaptureBonus) Value() int    { return b.Points }
func (b FirstCaptureBonus) Value() int { return b.Points }
func (b SpeedBonus) Value() int        { return b.Points }
func (b DistanceBonus) Value() int     { return b.Points }

func (StreakBonus) sealed()       {}
func (RecaptureBonus) sealed()    {}
func (FirstCaptureBonus) sealed() {}
func (SpeedBonus) sealed()        {}
func (DistanceBonus) sealed()     {}

// Bonuses is the itemised list attached to a capture.
type Bonuses []Bonus

// Sum adds up every bonus.
func (bs Bonuses) Sum() int {
	total := 0
	for _, b := range bs {
		total += b.Value()
	}
	return total
}

// wireBonus is the JSON shape of a bonus.
type wireBonus struct {
	Kind    BonusKind `json:"kind"`
	Label   string    `json:"label"`
	Points  int       `json:"points"`
	Streak  int       `json:"streak,omitempty"`
	Minutes float64   `json:"minutes,omitempty"`
	Meters  float64   `json:"meters,omitempty"`
}

func (bs Bonuses) MarshalJSON() ([]byte, error) {
	out := make([]wireBonus, len(bs))
	for i, b := range bs {
		w := wireBonus{Kind: b.Kind(), Label: b.Label(), Points: b.Value()}
		switch b := b.(type) {
		case StreakBonus:
			w.Streak = b.Streak
		case SpeedBonus:
			w.Minutes = b.Minutes
		case DistanceBonus:
			w.Meters = b.Meters
		}
		out[i] = w
	}
	return json.Marshal(out)
}

func (bs *Bonuses) UnmarshalJSON(data []byte) error {
	var in []wireBonus
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(Bonuses, 0, len(in))
	for _, w := range in {
		switch w.Kind {
		case KindStreak:
			out = append(out, StreakBonus{Streak: w.Streak, Points: w.Points})
		case KindRecapture:
			out = append(out, RecaptureBonus{Points: w.Points})
		case KindFirstCapture:
			out = append(out, FirstCaptureBonus{Points: w.Points})
		case KindSpeed:
			out = append(out, SpeedBonus{Minutes: w.Minutes, Points: w.Points})
		case KindDistance:
			out = append(out, DistanceBonus{Meters: w.Meters, Points: w.Points})
		default:
			return fmt.Errorf("unknown bonus kind %q", w.Kind)
		}
	}
	*bs = out
	return nil
}
