package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldowns tracks how long a player must wait before scanning a piece
// again. The game treats the remaining time as advisory.
type Cooldowns interface {
	PutCooldown(ctx context.Context, playerID, artID string, ttl time.Duration) error
	// CooldownRemaining returns zero when no cooldown is running.
	CooldownRemaining(ctx context.Context, playerID, artID string) (time.Duration, error)
}

func cooldownKey(playerID, artID string) string {
	return playerID + "_" + artID
}

// expiresLayout is fixed width so expires_at compares correctly as text.
const expiresLayout = "2006-01-02T15:04:05.000000000Z07:00"

type cooldownDoc struct {
	PlayerID  string    `json:"playerId"`
	ArtID     string    `json:"artId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *DocStore) PutCooldown(ctx context.Context, playerID, artID string, ttl time.Duration) error {
	doc := cooldownDoc{
		PlayerID:  playerID,
		ArtID:     artID,
		ExpiresAt: time.Now().Add(ttl).UTC(),
	}
	return s.putCooldown(ctx, doc)
}

func (s *DocStore) putCooldown(ctx context.Context, doc cooldownDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cooldowns (id, expires_at, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET expires_at = excluded.expires_at, data = excluded.data`,
		cooldownKey(doc.PlayerID, doc.ArtID), doc.ExpiresAt.UTC().Format(expiresLayout), string(data),
	)
	return err
}

func (s *DocStore) CooldownRemaining(ctx context.Context, playerID, artID string) (time.Duration, error) {
	var doc cooldownDoc
	err := s.get(ctx, "cooldowns", cooldownKey(playerID, artID), &doc)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return max(time.Until(doc.ExpiresAt), 0), nil
}

// PurgeCooldowns deletes expired cooldown documents.
func (s *DocStore) PurgeCooldowns(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cooldowns WHERE expires_at <= ?`,
		time.Now().UTC().Format(expiresLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RedisCooldowns keeps cooldowns as expiring Redis keys.
type RedisCooldowns struct {
	client *redis.Client
	prefix string
}

func NewRedisCooldowns(client *redis.Client) *RedisCooldowns {
	return &RedisCooldowns{client: client, prefix: "chomp:cooldown:"}
}

func (c *RedisCooldowns) PutCooldown(ctx context.Context, playerID, artID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+cooldownKey(playerID, artID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("setting cooldown: %w", err)
	}
	return nil
}

func (c *RedisCooldowns) CooldownRemaining(ctx context.Context, playerID, artID string) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, c.prefix+cooldownKey(playerID, artID)).Result()
	if err != nil {
		return 0, fmt.Errorf("reading cooldown: %w", err)
	}
	// TTL reports -2 for a missing key and -1 for one without expiry.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
