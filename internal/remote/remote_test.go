package remote

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/database"
	"github.com/chomp/streetartctf/internal/migrations"
)

func setupStore(t *testing.T) (*DocStore, *Feed) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	feed := NewFeed()
	return NewDocStore(db, feed), feed
}

func drained(f *Feed) bool {
	select {
	case <-f.C():
		return true
	default:
		return false
	}
}

func TestRecordCaptureLastWriteWins(t *testing.T) {
	s, feed := setupStore(t)
	ctx := context.Background()

	first := CaptureRecord{ArtID: "art-001", Team: chomp.TeamRed, PlayerName: "Ana", Points: 250, CapturedAt: time.Now()}
	second := CaptureRecord{ArtID: "art-001", Team: chomp.TeamBlue, PlayerName: "Bo", Points: 350, IsRecapture: true, CapturedAt: time.Now()}

	if err := s.RecordCapture(ctx, first); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := s.RecordCapture(ctx, second); err != nil {
		t.Fatalf("second: %v", err)
	}
	if !drained(feed) {
		t.Error("expected feed signal after writes")
	}
	if drained(feed) {
		t.Error("expected writes to coalesce into one signal")
	}

	got, err := s.Capture(ctx, "art-001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Team != chomp.TeamBlue || got.PlayerName != "Bo" || !got.IsRecapture {
		t.Errorf("record = %+v, want Bo's recapture", got)
	}

	if _, err := s.Capture(ctx, "art-999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing record: err = %v, want ErrNotFound", err)
	}
}

func TestStatusOverrideSurvivesCapture(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	if err := s.SetStatusOverride(ctx, "art-002", chomp.StatusGhost); err != nil {
		t.Fatalf("override: %v", err)
	}
	if err := s.RecordCapture(ctx, CaptureRecord{ArtID: "art-002", Team: chomp.TeamRed}); err != nil {
		t.Fatalf("capture: %v", err)
	}

	all, err := s.Captures(ctx)
	if err != nil {
		t.Fatalf("captures: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d records, want 1", len(all))
	}
	if all[0].StatusOverride != chomp.StatusGhost || all[0].Team != chomp.TeamRed {
		t.Errorf("record = %+v", all[0])
	}
}

func TestCapturesOrdered(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	for _, id := range []string{"art-003", "art-001", "art-002"} {
		if err := s.RecordCapture(ctx, CaptureRecord{ArtID: id, Team: chomp.TeamRed}); err != nil {
			t.Fatal(err)
		}
	}
	all, err := s.Captures(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"art-001", "art-002", "art-003"} {
		if all[i].ArtID != want {
			t.Errorf("captures[%d] = %s, want %s", i, all[i].ArtID, want)
		}
	}
}

func TestTeamScores(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	s.AddTeamScore(ctx, chomp.TeamRed, 100)
	s.AddTeamScore(ctx, chomp.TeamRed, 50)
	s.AddTeamScore(ctx, chomp.TeamBlue, 25)

	scores, err := s.TeamScores(ctx)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if got := scores[chomp.TeamRed]; got.Score != 150 || got.Captures != 2 {
		t.Errorf("red = %+v, want 150/2", got)
	}
	if got := scores[chomp.TeamBlue]; got.Score != 25 || got.Captures != 1 {
		t.Errorf("blue = %+v, want 25/1", got)
	}
}

func TestTopPlayers(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	for _, p := range []PlayerAggregate{
		{ID: "a", Name: "Ana", Score: 300},
		{ID: "b", Name: "Bo", Score: 900},
		{ID: "c", Name: "Cy", Score: 10},
	} {
		if err := s.UpsertPlayer(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	s.UpsertPlayer(ctx, PlayerAggregate{ID: "c", Name: "Cy", Score: 1200})

	top, err := s.TopPlayers(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].Name != "Cy" || top[1].Name != "Bo" {
		t.Errorf("top = %+v, want Cy then Bo", top)
	}

	if err := s.DeletePlayer(ctx, "c"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeletePlayer(ctx, "c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func testCooldowns(t *testing.T, c Cooldowns) {
	t.Helper()
	ctx := context.Background()

	left, err := c.CooldownRemaining(ctx, "p1", "art-001")
	if err != nil || left != 0 {
		t.Fatalf("no cooldown: %v, %v", left, err)
	}
	if err := c.PutCooldown(ctx, "p1", "art-001", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	left, err = c.CooldownRemaining(ctx, "p1", "art-001")
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if left <= 50*time.Second || left > time.Minute {
		t.Errorf("remaining = %v, want just under a minute", left)
	}
	if left, _ := c.CooldownRemaining(ctx, "p2", "art-001"); left != 0 {
		t.Errorf("other player remaining = %v, want 0", left)
	}
}

func TestDocStoreCooldowns(t *testing.T) {
	s, _ := setupStore(t)
	testCooldowns(t, s)

	ctx := context.Background()
	if err := s.PutCooldown(ctx, "p1", "art-002", -time.Second); err != nil {
		t.Fatal(err)
	}
	if left, _ := s.CooldownRemaining(ctx, "p1", "art-002"); left != 0 {
		t.Errorf("expired remaining = %v, want 0", left)
	}
	n, err := s.PurgeCooldowns(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1", n)
	}
}

func TestRedisCooldowns(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis tests")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatal(err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })

	c := NewRedisCooldowns(client)
	c.prefix = "chomp:test:" + t.Name() + ":"
	t.Cleanup(func() {
		client.Del(context.Background(), c.prefix+cooldownKey("p1", "art-001"))
	})
	testCooldowns(t, c)
}

func TestAccounts(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	a, err := s.CreateAccount(ctx, "Ana", "hash", "player-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateAccount(ctx, "ana", "hash2", "player-2"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("duplicate name: err = %v, want ErrNameTaken", err)
	}

	got, err := s.AccountByName(ctx, "ANA")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if got.ID != a.ID || got.PlayerID != "player-1" {
		t.Errorf("account = %+v", got)
	}
	if _, err := s.AccountByName(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing account: err = %v", err)
	}

	token, err := s.CreateSession(ctx, "player-1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	pid, err := s.PlayerFromToken(ctx, token)
	if err != nil || pid != "player-1" {
		t.Errorf("token resolves to %q, %v", pid, err)
	}
	if err := s.DeleteSession(ctx, token); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PlayerFromToken(ctx, token); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted session: err = %v", err)
	}
}

func TestAdminSessions(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	if err := s.SeedAdmin(ctx, "admin@chomp.art", "hash"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.SeedAdmin(ctx, "other@chomp.art", "hash"); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if _, err := s.AdminByEmail(ctx, "other@chomp.art"); !errors.Is(err, ErrNotFound) {
		t.Error("second seed should be a no-op")
	}

	a, err := s.AdminByEmail(ctx, "admin@chomp.art")
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.CreateAdminSession(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := s.AdminFromSession(ctx, id)
	if err != nil || sess.Email != "admin@chomp.art" {
		t.Errorf("session = %+v, %v", sess, err)
	}
	if err := s.DeleteAdminSession(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AdminFromSession(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted session: err = %v", err)
	}
}

func TestPurgeCooldownsWholeSecond(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	// A whole-second expiry has no fractional digits; it must still sort
	// before a later time that has them.
	expired := time.Now().UTC().Truncate(time.Second)
	if err := s.putCooldown(ctx, cooldownDoc{PlayerID: "p1", ArtID: "art-001", ExpiresAt: expired}); err != nil {
		t.Fatal(err)
	}
	live := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	if err := s.putCooldown(ctx, cooldownDoc{PlayerID: "p1", ArtID: "art-002", ExpiresAt: live}); err != nil {
		t.Fatal(err)
	}

	n, err := s.PurgeCooldowns(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged %d, want 1", n)
	}
	if left, _ := s.CooldownRemaining(ctx, "p1", "art-002"); left <= 0 {
		t.Errorf("live cooldown was purged")
	}
}

func TestFeedOnlyFollowsCaptures(t *testing.T) {
	s, feed := setupStore(t)
	ctx := context.Background()

	s.AddTeamScore(ctx, chomp.TeamRed, 100)
	s.UpsertPlayer(ctx, PlayerAggregate{ID: "a", Name: "Ana", Score: 100})
	s.DeletePlayer(ctx, "a")
	s.PutCooldown(ctx, "a", "art-001", time.Minute)
	if drained(feed) {
		t.Fatal("non-capture writes signalled the feed")
	}

	s.SetStatusOverride(ctx, "art-001", chomp.StatusGhost)
	if !drained(feed) {
		t.Error("status override did not signal the feed")
	}
}
