package game

import "github.com/chomp/streetartctf/internal/chomp"

// Sector is the control summary of one area.
type Sector struct {
	Area       string               `json:"area"`
	Controller chomp.TeamID         `json:"controller,omitempty"`
	Owned      map[chomp.TeamID]int `json:"owned"`
	Total      int                  `json:"total"`
}

// Sectors groups pieces by area in first-seen order. The team owning the
// most live pieces in an area controls it; a tie leaves it uncontrolled.
// Ghost pieces count toward nothing.
func Sectors(pieces []chomp.ArtPiece) []Sector {
	var out []Sector
	idx := map[string]int{}
	for _, p := range pieces {
		if p.Status == chomp.StatusGhost {
			continue
		}
		i, ok := idx[p.Area]
		if !ok {
			i = len(out)
			idx[p.Area] = i
			out = append(out, Sector{Area: p.Area, Owned: map[chomp.TeamID]int{}})
		}
		out[i].Total++
		if p.CapturedBy != chomp.NoTeam {
			out[i].Owned[p.CapturedBy]++
		}
	}

	for i := range out {
		best, top, tied := chomp.NoTeam, 0, false
		for _, t := range chomp.Teams() {
			n := out[i].Owned[t.ID]
			switch {
			case n > top:
				best, top, tied = t.ID, n, false
			case n == top && n > 0:
				tied = true
			}
		}
		if !tied {
			out[i].Controller = best
		}
	}
	return out
}

// Controllers maps each area to its controlling team.
func Controllers(sectors []Sector) map[string]chomp.TeamID {
	out := make(map[string]chomp.TeamID, len(sectors))
	for _, s := range sectors {
		out[s.Area] = s.Controller
	}
	return out
}
