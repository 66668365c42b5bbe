package localstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/chomp/streetartctf/internal/database"
	"github.com/chomp/streetartctf/internal/localstore"
	"github.com/chomp/streetartctf/internal/migrations"
)

func newSQLStore(t *testing.T) *localstore.SQLStore {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.RunLocal(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return localstore.NewSQLStore(db)
}

type profile struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestStores(t *testing.T) {
	stores := map[string]localstore.Store{
		"sql":    newSQLStore(t),
		"memory": localstore.NewMemory(),
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var p profile
			if err := s.Load(ctx, "p1", localstore.KeyPlayer, &p); !errors.Is(err, localstore.ErrNotFound) {
				t.Fatalf("load missing: err = %v, want ErrNotFound", err)
			}

			if err := s.Save(ctx, "p1", localstore.KeyPlayer, profile{Name: "Ana", Score: 10}); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := s.Save(ctx, "p1", localstore.KeyPlayer, profile{Name: "Ana", Score: 45}); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			if err := s.Save(ctx, "p1", localstore.KeyGameMode, "solo"); err != nil {
				t.Fatalf("save mode: %v", err)
			}
			if err := s.Save(ctx, "p2", localstore.KeyPlayer, profile{Name: "Bo"}); err != nil {
				t.Fatalf("save p2: %v", err)
			}

			if err := s.Load(ctx, "p1", localstore.KeyPlayer, &p); err != nil {
				t.Fatalf("load: %v", err)
			}
			if p != (profile{Name: "Ana", Score: 45}) {
				t.Errorf("loaded %+v", p)
			}

			if err := s.Clear(ctx, "p1"); err != nil {
				t.Fatalf("clear: %v", err)
			}
			var mode string
			if err := s.Load(ctx, "p1", localstore.KeyGameMode, &mode); !errors.Is(err, localstore.ErrNotFound) {
				t.Errorf("mode after clear: err = %v", err)
			}
			if err := s.Load(ctx, "p2", localstore.KeyPlayer, &p); err != nil || p.Name != "Bo" {
				t.Errorf("p2 after clearing p1: %+v, %v", p, err)
			}
		})
	}
}

func TestMemoryKeys(t *testing.T) {
	m := localstore.NewMemory()
	ctx := context.Background()
	m.Save(ctx, "p", localstore.KeyDiscoveries, []string{"art-001"})
	if keys := m.Keys("p"); len(keys) != 1 || keys[0] != localstore.KeyDiscoveries {
		t.Errorf("keys = %v", keys)
	}
}
