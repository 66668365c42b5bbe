// Package achievement holds the static achievement catalog and evaluates
// it against a player's cumulative stats.
package achievement

import (
	"encoding/json"
	"slices"

	"github.com/chomp/streetartctf/internal/chomp"
)

type ID string

type Category string

const (
	CategoryDiscovery Category = "discovery"
	CategoryCapture   Category = "capture"
	CategoryRecapture Category = "recapture"
	CategoryStreak    Category = "streak"
	CategoryScore     Category = "score"
	CategoryExplore   Category = "explore"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type Achievement struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Category    Category `json:"category"`
	Rarity      Rarity   `json:"rarity"`

	Check func(chomp.PlayerProfile) bool `json:"-"`
}

var catalog = []Achievement{
	{
		ID: "first_discovery", Title: "Art Spotter", Description: "Discover your first piece",
		Icon: "👀", Category: CategoryDiscovery, Rarity: RarityCommon,
		Check: func(p chomp.PlayerProfile) bool { return p.Discoveries >= 1 },
	},
	{
		ID: "curator", Title: "Curator", Description: "Discover 10 pieces",
		Icon: "🖼️", Category: CategoryDiscovery, Rarity: RarityRare,
		Check: func(p chomp.PlayerProfile) bool { return p.Discoveries >= 10 },
	},
	{
		ID: "first_chomp", Title: "First Chomp", Description: "Capture your first piece",
		Icon: "🦷", Category: CategoryCapture, Rarity: RarityCommon,
		Check: func(p chomp.PlayerProfile) bool { return p.TotalCaptures >= 1 },
	},
	{
		ID: "collector", Title: "Collector", Description: "Make 10 captures",
		Icon: "🎨", Category: CategoryCapture, Rarity: RarityRare,
		Check: func(p chomp.PlayerProfile) bool { return p.TotalCaptures >= 10 },
	},
	{
		ID: "tagger_supreme", Title: "Tagger Supreme", Description: "Make 50 captures",
		Icon: "👑", Category: CategoryCapture, Rarity: RarityEpic,
		Check: func(p chomp.PlayerProfile) bool { return p.TotalCaptures >= 50 },
	},
	{
		ID: "pioneer", Title: "Pioneer", Description: "Be the first to claim a piece",
		Icon: "🚩", Category: CategoryCapture, Rarity: RarityCommon,
		Check: func(p chomp.PlayerProfile) bool { return p.FirstCaptures >= 1 },
	},
	{
		ID: "thief", Title: "Art Thief", Description: "Steal a piece from the other team",
		Icon: "🦝", Category: CategoryRecapture, Rarity: RarityCommon,
		Check: func(p chomp.PlayerProfile) bool { return p.Recaptures >= 1 },
	},
	{
		ID: "heist_master", Title: "Heist Master", Description: "Steal 10 pieces",
		Icon: "💰", Category: CategoryRecapture, Rarity: RarityEpic,
		Check: func(p chomp.PlayerProfile) bool { return p.Recaptures >= 10 },
	},
	{
		ID: "on_fire", Title: "On Fire", Description: "Reach a streak of 3",
		Icon: "🔥", Category: CategoryStreak, Rarity: RarityCommon,
		Check: func(p chomp.PlayerProfile) bool { return p.MaxStreak >= 3 },
	},
	{
		ID: "unstoppable", Title: "Unstoppable", Description: "Reach a streak of 10",
		Icon: "⚡", Category: CategoryStreak, Rarity: RarityLegendary,
		Check: func(p chomp.PlayerProfile) bool { return p.MaxStreak >= 10 },
	},
	{
		ID: "neighbor", Title: "Neighbor", Description: "Visit 3 areas",
		Icon: "🗺️", Category: CategoryExplore, Rarity: RarityRare,
		Check: func(p chomp.PlayerProfile) bool { return len(p.AreasVisited) >= 3 },
	},
	{
		ID: "city_wanderer", Title: "City Wanderer", Description: "Visit 5 areas",
		Icon: "🧭", Category: CategoryExplore, Rarity: RarityEpic,
		Check: func(p chomp.PlayerProfile) bool { return len(p.AreasVisited) >= 5 },
	},
	{
		ID: "high_roller", Title: "High Roller", Description: "Score 1,000 points",
		Icon: "⭐", Category: CategoryScore, Rarity: RarityRare,
		Check: func(p chomp.PlayerProfile) bool { return p.Score >= 1000 },
	},
	{
		ID: "legend", Title: "Street Legend", Description: "Score 10,000 points",
		Icon: "🏆", Category: CategoryScore, Rarity: RarityLegendary,
		Check: func(p chomp.PlayerProfile) bool { return p.Score >= 10000 },
	},
}

// All returns the catalog in display order.
func All() []Achievement { return slices.Clone(catalog) }

func Lookup(id ID) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Set is a set of achievement ids. The zero value is empty and usable.
// Sets only grow: Union is the only way to add to one.
type Set struct {
	ids map[ID]struct{}
}

func NewSet(ids ...ID) Set {
	var s Set
	return s.Union(ids...)
}

func (s Set) Has(id ID) bool {
	_, ok := s.ids[id]
	return ok
}

func (s Set) Len() int { return len(s.ids) }

// Union returns a new set holding s plus ids. s is left untouched.
func (s Set) Union(ids ...ID) Set {
	out := Set{ids: make(map[ID]struct{}, len(s.ids)+len(ids))}
	for id := range s.ids {
		out.ids[id] = struct{}{}
	}
	for _, id := range ids {
		out.ids[id] = struct{}{}
	}
	return out
}

// IDs lists the members in catalog order, followed by any unknown ids
// sorted lexically.
func (s Set) IDs() []ID {
	out := make([]ID, 0, len(s.ids))
	for _, a := range catalog {
		if s.Has(a.ID) {
			out = append(out, a.ID)
		}
	}
	var extra []ID
	for id := range s.ids {
		if _, known := Lookup(id); !known {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

func (s Set) MarshalJSON() ([]byte, error) { return json.Marshal(s.IDs()) }

func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []ID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}

// Evaluate recomputes every predicate against p.
func Evaluate(p chomp.PlayerProfile) Set {
	var ids []ID
	for _, a := range catalog {
		if a.Check(p) {
			ids = append(ids, a.ID)
		}
	}
	return NewSet(ids...)
}

// NewlyUnlocked returns the achievements p qualifies for that are not in
// prev, in catalog order.
func NewlyUnlocked(p chomp.PlayerProfile, prev Set) []ID {
	var out []ID
	for _, id := range Evaluate(p).IDs() {
		if !prev.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
