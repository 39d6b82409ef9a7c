package errors_test

import (
	"database/sql"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/stretchr/testify/require"
	"log/slog"
	"slices"
	"testing"
)

func TestAnnotatedError(t *testing.T) {
	err := errors.New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := errors.NewSentinel("test error")
	require.NotErrorIs(t, err, errors.NewSentinel("test error"))
	wrapped := errors.Wrap(sentinel, "wrapped", slog.String("call_id", "abc"))
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "wrapped: test error", wrapped.Error())

	// Ensure log values are coming through.
	var annotated errors.AnnotatedError
	require.True(t, errors.As(err, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	source := group[sourceIdx]
	require.Contains(t, source.Value.String(), "annotatederror_test.go")
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, errors.Wrap(nil, "nothing to wrap"))
}

func TestSlogError(t *testing.T) {
	inner := errors.Wrap(sql.ErrNoRows, "query interview", slog.String("call_id", "abc"))
	outer := errors.Wrap(inner, "get interview", slog.String("handler", "interview"))

	attr := errors.SlogError(outer)
	require.Equal(t, "error", attr.Key)

	group := attr.Value.Group()
	require.Contains(t, group, slog.String("msg", "get interview: query interview: sql: no rows in result set"))
	require.Contains(t, group, slog.String("call_id", "abc"))
	require.Contains(t, group, slog.String("handler", "interview"))
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.NotEqual(t, -1, sourceIdx)
	require.Contains(t, group[sourceIdx].Value.String(), "annotatederror_test.go")
}
