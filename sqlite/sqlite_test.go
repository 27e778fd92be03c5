package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func result(id string, finished time.Time) sketchui.Result {
	return sketchui.Result{
		SessionID:   id,
		SketchRef:   "sketch.png",
		Instruction: "Build it",
		Candidate: sketchui.Candidate{
			Markup: "<div></div>",
			Style:  "div{}",
			Script: "run()",
			Raw:    "raw reply",
		},
		VerdictText: "bad\nToo many retries. Exiting.",
		Termination: sketchui.TerminationAttemptLimit,
		Attempts:    8,
		Iterations:  8,
		CreatedAt:   finished.Add(-time.Minute),
		FinishedAt:  finished,
	}
}

func assertResult(t *testing.T, want, got sketchui.Result) {
	t.Helper()
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "CreatedAt mismatch")
	assert.True(t, want.FinishedAt.Equal(got.FinishedAt), "FinishedAt mismatch")
	want.CreatedAt, got.CreatedAt = time.Time{}, time.Time{}
	want.FinishedAt, got.FinishedAt = time.Time{}, time.Time{}
	assert.Equal(t, want, got)
}

func TestStore_SaveGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)
	r := result("s1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assertResult(t, r, got)
}

func TestStore_SaveReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)
	r := result("s1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, r))

	r.VerdictText = "**APPROVED**"
	r.Termination = sketchui.TerminationApproved
	require.NoError(t, s.Save(ctx, r))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Approved())
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()
	_, err := openStore(t).Get(context.Background(), "nope")
	require.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestStore_SaveRequiresSessionID(t *testing.T) {
	t.Parallel()
	err := openStore(t).Save(context.Background(), sketchui.Result{})
	require.ErrorIs(t, err, sketchui.ErrValidation)
}

func TestStore_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, s.Save(ctx, result(fmt.Sprintf("s%d", i), base.Add(time.Duration(i)*time.Hour))))
	}

	t.Run("newest first with limit", func(t *testing.T) {
		got, err := s.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "s4", got[0].SessionID)
		assert.Equal(t, "s3", got[1].SessionID)
	})

	t.Run("no limit", func(t *testing.T) {
		got, err := s.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, result("s1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))))
	require.NoError(t, s.Close())

	s, err = sqlite.Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].SessionID)
}

func TestOpen_InMemory(t *testing.T) {
	t.Parallel()
	s, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Save(context.Background(), result("m", time.Now())))
}
