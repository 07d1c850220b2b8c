package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/whisker/internal/domain"
)

func TestStatusFileRepository_LoadMissing(t *testing.T) {
	repo := NewStatusFileRepository(t.TempDir())

	status, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, status.IsEmpty())
}

func TestStatusFileRepository_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	repo := NewStatusFileRepository(dir)
	ctx := context.Background()

	want := domain.Status{
		RunID:     "run-1",
		State:     "running",
		Port:      "/dev/ttyACM0",
		Stats:     domain.Stats{LinesRead: 10, SamplesDecoded: 9, MalformedFrames: 1},
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = os.Stat(repo.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestStatusFileRepository_Overwrite(t *testing.T) {
	repo := NewStatusFileRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.Status{RunID: "a", State: "starting"}))
	require.NoError(t, repo.Save(ctx, domain.Status{RunID: "a", State: "disabled", LastError: "no device"}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "disabled", got.State)
	assert.Equal(t, "no device", got.LastError)
}

func TestStatusFileRepository_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	repo := NewStatusFileRepository(dir)
	require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0o600))

	_, err := repo.Load(context.Background())
	assert.Error(t, err)
}

func TestStatusFileRepository_CanceledContext(t *testing.T) {
	repo := NewStatusFileRepository(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, domain.Status{RunID: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
