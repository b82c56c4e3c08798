package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/config"
	"github.com/novaengine/novasim/internal/input"
	"github.com/novaengine/novasim/internal/replay"
	"github.com/novaengine/novasim/internal/rng"
	"github.com/stretchr/testify/require"
)

func sampleTrace(seed uint64, n int) *replay.Trace {
	tr := &replay.Trace{Version: replay.CurrentVersion, Seed: seed}
	for i := 0; i < n; i++ {
		ents := []replay.EntitySnapshot{{
			ID:          1,
			Position:    component.Position{X: float64(i) * 0.1, Y: 1.0 / 3},
			Velocity:    component.Velocity{VX: 0.1},
			HasVelocity: true,
		}}
		tr.Frames = append(tr.Frames, replay.Frame{
			T:        float64(i) / 60,
			Input:    input.Snapshot{Forward: i%2 == 0},
			RNG:      rng.StreamState{Seed: seed, Draws: uint64(i)},
			Entities: ents,
			Checksum: replay.Checksum(ents),
		})
	}
	return tr
}

func openTestArchive(t *testing.T) Archive {
	t.Helper()
	cfg := config.ArchiveConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "db", "traces.db")}
	a, err := OpenArchive(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	// Seeds above MaxInt64 survive the text column.
	tr := sampleTrace(18446744073709551557, 5)
	require.NoError(t, a.Save(ctx, "run-1", tr))

	got, err := a.Load(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, tr, got)

	list, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "run-1", list[0].Name)
	require.Equal(t, tr.Seed, list[0].Seed)
	require.Equal(t, 5, list[0].FrameCount)
	require.Equal(t, 2, list[0].Version)
	require.Equal(t, tr.Frames[4].Checksum, list[0].FinalChecksum)
}

func TestSQLiteOverwrite(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)
	require.NoError(t, a.Save(ctx, "run", sampleTrace(1, 2)))
	require.NoError(t, a.Save(ctx, "run", sampleTrace(2, 7)))
	require.NoError(t, a.Save(ctx, "another", sampleTrace(3, 1)))

	got, err := a.Load(ctx, "run")
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.Seed)
	require.Len(t, got.Frames, 7)

	list, err := a.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"another", "run"}, []string{list[0].Name, list[1].Name})
}

func TestSQLiteErrors(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)
	_, err := a.Load(ctx, "nope")
	require.ErrorIs(t, err, ErrTraceNotFound)
	require.ErrorIs(t, a.Save(ctx, "empty", &replay.Trace{}), replay.ErrEmptyTrace)
}

func TestOpenArchiveDisabled(t *testing.T) {
	a, err := OpenArchive(context.Background(), config.ArchiveConfig{}, nil)
	require.NoError(t, err)
	require.Nil(t, a)

	_, err = OpenArchive(context.Background(), config.ArchiveConfig{Driver: "mysql"}, nil)
	require.Error(t, err)
}

func TestApplyPoolLimits(t *testing.T) {
	pc, err := pgxpool.ParseConfig("postgres://sim@localhost:5432/novasim")
	require.NoError(t, err)

	applyPoolLimits(pc, config.ArchiveConfig{MaxOpenConns: 3, MaxIdleConns: 8, ConnMaxLifetime: time.Minute})
	require.Equal(t, int32(3), pc.MaxConns)
	require.Equal(t, int32(3), pc.MinConns)
	require.Equal(t, time.Minute, pc.MaxConnLifetime)

	_, err = NewDB(context.Background(), config.ArchiveConfig{Driver: "postgres"}, nil)
	require.Error(t, err)
}
