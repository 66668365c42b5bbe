package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/chomp/streetartctf/internal/chomp"
)

type TeamScore struct {
	Team     chomp.TeamID `json:"team"`
	Score    int          `json:"score"`
	Captures int          `json:"captures"`
}

// AddTeamScore adds points and one capture to team's aggregate.
func (s *DocStore) AddTeamScore(ctx context.Context, team chomp.TeamID, points int) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ts := TeamScore{Team: team}
	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT json(data) FROM team_scores WHERE id = ?`, string(team),
	).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	default:
		if err := json.Unmarshal([]byte(data), &ts); err != nil {
			return err
		}
	}

	ts.Score += points
	ts.Captures++

	jsonData, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO team_scores (id, data) VALUES (?, jsonb(?))`,
		string(team), string(jsonData),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// TeamScores returns the aggregate of every team that has scored.
func (s *DocStore) TeamScores(ctx context.Context) (map[chomp.TeamID]TeamScore, error) {
	scores, err := all[TeamScore](ctx, s.db, `SELECT json(data) FROM team_scores ORDER BY id`)
	if err != nil {
		return nil, err
	}
	out := make(map[chomp.TeamID]TeamScore, len(scores))
	for _, ts := range scores {
		out[ts.Team] = ts
	}
	return out, nil
}

// PlayerAggregate is the public mirror of a player's profile.
type PlayerAggregate struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Team          chomp.TeamID `json:"team,omitempty"`
	Score         int          `json:"score"`
	TotalCaptures int          `json:"totalCaptures"`
	MaxStreak     int          `json:"maxStreak"`
	Discoveries   int          `json:"discoveries"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func (s *DocStore) UpsertPlayer(ctx context.Context, p PlayerAggregate) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO players (id, score, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET score = excluded.score, data = excluded.data`,
		p.ID, p.Score, string(data),
	)
	return err
}

func (s *DocStore) DeletePlayer(ctx context.Context, id string) error {
	return s.del(ctx, "players", id)
}

// TopPlayers returns up to limit players by descending score.
func (s *DocStore) TopPlayers(ctx context.Context, limit int) ([]PlayerAggregate, error) {
	return all[PlayerAggregate](ctx, s.db,
		`SELECT json(data) FROM players ORDER BY score DESC, id LIMIT ?`, limit)
}
