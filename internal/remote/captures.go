package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/chomp/streetartctf/internal/chomp"
)

// CaptureRecord is the latest capture of one art piece. There is one
// record per piece and the most recent write wins.
type CaptureRecord struct {
	ArtID          string          `json:"artId"`
	Team           chomp.TeamID    `json:"team"`
	PlayerID       string          `json:"playerId"`
	PlayerName     string          `json:"playerName"`
	Points         int             `json:"points"`
	Streak         int             `json:"streak"`
	IsRecapture    bool            `json:"isRecapture"`
	IsFirstCapture bool            `json:"isFirstCapture"`
	CapturedAt     time.Time       `json:"capturedAt"`
	StatusOverride chomp.ArtStatus `json:"statusOverride,omitempty"`
}

// RecordCapture replaces the capture record for rec.ArtID. A status
// override already set on the piece survives the write.
func (s *DocStore) RecordCapture(ctx context.Context, rec CaptureRecord) error {
	err := s.modifyCapture(ctx, rec.ArtID, func(c *CaptureRecord) {
		override := c.StatusOverride
		*c = rec
		if c.StatusOverride == "" {
			c.StatusOverride = override
		}
	})
	if err != nil {
		return err
	}
	s.changed()
	return nil
}

// SetStatusOverride forces the status of artID regardless of the catalog.
func (s *DocStore) SetStatusOverride(ctx context.Context, artID string, status chomp.ArtStatus) error {
	err := s.modifyCapture(ctx, artID, func(c *CaptureRecord) {
		c.StatusOverride = status
	})
	if err != nil {
		return err
	}
	s.changed()
	return nil
}

// Capture returns the record for artID or ErrNotFound.
func (s *DocStore) Capture(ctx context.Context, artID string) (CaptureRecord, error) {
	var c CaptureRecord
	err := s.get(ctx, "captures", artID, &c)
	return c, err
}

// Captures returns every capture record ordered by art id.
func (s *DocStore) Captures(ctx context.Context) ([]CaptureRecord, error) {
	return all[CaptureRecord](ctx, s.db, `SELECT json(data) FROM captures ORDER BY id`)
}

// modifyCapture loads a record (or a blank one), applies fn and saves it
// in a transaction.
func (s *DocStore) modifyCapture(ctx context.Context, artID string, fn func(*CaptureRecord)) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	c := CaptureRecord{ArtID: artID}
	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT json(data) FROM captures WHERE id = ?`, artID,
	).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	default:
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return err
		}
	}

	fn(&c)
	c.ArtID = artID

	jsonData, err := json.Marshal(c)
	if err != nil {
		return err
	}
	var capturedAt string
	if !c.CapturedAt.IsZero() {
		capturedAt = c.CapturedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO captures (id, team, captured_at, data) VALUES (?, ?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET team = excluded.team, captured_at = excluded.captured_at, data = excluded.data`,
		artID, string(c.Team), capturedAt, string(jsonData),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}
