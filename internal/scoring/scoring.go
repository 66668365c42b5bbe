// Package scoring computes the points awarded for a capture.
package scoring

import (
	"math"
	"time"

	"github.com/chomp/streetartctf/internal/chomp"
)

const (
	streakStep       = 0.10
	streakCap        = 1.00
	recaptureRate    = 0.50
	firstCaptureRate = 0.25
	speedRate        = 0.20
	speedWindow      = 5 * time.Minute

	distanceThreshold = 50.0
	distancePer100m   = 5
	distanceCap       = 50
)

type Result struct {
	BasePoints     int     `json:"basePoints"`
	TotalPoints    int     `json:"totalPoints"`
	Bonuses        Bonuses `json:"bonuses"`
	IsRecapture    bool    `json:"isRecapture"`
	IsFirstCapture bool    `json:"isFirstCapture"`
}

// Compute scores a capture of art by player at now. loc is the player's
// position, if known. It has no side effects.
func Compute(art chomp.ArtPiece, player chomp.PlayerProfile, loc *chomp.Location, now time.Time) Result {
	base := art.Size.Points()
	res := Result{
		BasePoints:     base,
		IsRecapture:    art.CapturedBy != chomp.NoTeam && art.CapturedBy != player.Team,
		IsFirstCapture: art.CapturedBy == chomp.NoTeam,
		Bonuses:        Bonuses{},
	}

	if player.Streak > 0 {
		mult := math.Min(float64(player.Streak)*streakStep, streakCap)
		res.Bonuses = append(res.Bonuses, StreakBonus{
			Streak: player.Streak,
			Points: round(float64(base) * mult),
		})
	}
	if res.IsRecapture {
		res.Bonuses = append(res.Bonuses, RecaptureBonus{Points: round(float64(base) * recaptureRate)})
	}
	if res.IsFirstCapture {
		res.Bonuses = append(res.Bonuses, FirstCaptureBonus{Points: round(float64(base) * firstCaptureRate)})
	}
	if player.LastCaptureAt != nil {
		elapsed := now.Sub(*player.LastCaptureAt)
		if elapsed < speedWindow {
			res.Bonuses = append(res.Bonuses, SpeedBonus{
				Minutes: elapsed.Minutes(),
				Points:  round(float64(base) * speedRate),
			})
		}
	}
	if loc != nil && player.LastCaptureLocation != nil {
		d := chomp.Distance(*player.LastCaptureLocation, *loc)
		if d > distanceThreshold {
			res.Bonuses = append(res.Bonuses, DistanceBonus{
				Meters: d,
				Points: min(round(d/100)*distancePer100m, distanceCap),
			})
		}
	}

	res.TotalPoints = base + res.Bonuses.Sum()
	return res
}

func round(f float64) int { return int(math.Round(f)) }
