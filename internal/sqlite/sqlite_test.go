package sqlite_test

import (
	"context"
	"github.com/myrjola/interviewdash/internal/sqlite"
	"github.com/myrjola/interviewdash/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

func TestNewDatabase(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var count int
	require.NoError(t, db.ReadOnly.GetContext(ctx, &count, "SELECT COUNT(*) FROM interviews"))
	require.Equal(t, 0, count)

	require.NoError(t, db.Seed(ctx))
	require.NoError(t, db.ReadOnly.GetContext(ctx, &count, "SELECT COUNT(*) FROM interviews"))
	require.Equal(t, 5, count)

	// Seeding again leaves the fixtures as they are.
	require.NoError(t, db.Seed(ctx))
	require.NoError(t, db.ReadOnly.GetContext(ctx, &count, "SELECT COUNT(*) FROM interviews"))
	require.Equal(t, 5, count)

	_, err = db.ReadOnly.ExecContext(ctx, "DELETE FROM interviews")
	require.Error(t, err, "read-only pool must reject writes")
}
