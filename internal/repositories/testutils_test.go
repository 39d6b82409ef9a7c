package repositories_test

import (
	"context"
	"github.com/myrjola/interviewdash/internal/sqlite"
	"github.com/myrjola/interviewdash/internal/testhelpers"
	"io"
	"testing"
)

// newTestDB creates a new in-memory database seeded with the demo interviews.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	var (
		db  *sqlite.Database
		err error
	)
	ctx, cancel := context.WithCancel(context.Background())

	if db, err = sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard)); err != nil {
		cancel()
		t.Fatal(err)
	}
	if err = db.Seed(ctx); err != nil {
		cancel()
		t.Fatal(err)
	}

	t.Cleanup(func() {
		cancel()
		if err = db.Close(); err != nil {
			t.Error(err)
		}
	})

	return db
}
