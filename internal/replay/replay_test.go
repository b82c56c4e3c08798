package replay

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/core/ecs"
	"github.com/novaengine/novasim/internal/input"
	"github.com/novaengine/novasim/internal/rng"
	"github.com/novaengine/novasim/internal/world"
	"github.com/stretchr/testify/require"
)

func newScene() (*world.State, ecs.EntityID, ecs.EntityID) {
	ws := world.NewState()
	a := ws.Create()
	ws.Positions().Set(a, &component.Position{X: 1.5, Y: -2, Z: 1.0 / 3})
	ws.Velocities().Set(a, &component.Velocity{VX: 0.1, VY: 0, VZ: -7e-300})
	b := ws.Create()
	ws.Positions().Set(b, &component.Position{X: math.MaxFloat64, Y: -1e-9})
	return ws, a, b
}

func TestRecorderSnapshots(t *testing.T) {
	ws, a, b := newScene()
	rec := NewRecorder(nil)

	rec.RecordFrame(0, input.Snapshot{}, rng.StreamState{}, ws)
	require.Zero(t, rec.Len(), "not recording")

	rec.Start(7)
	in := input.Snapshot{Forward: true, CameraYaw: 0.25}
	rec.RecordFrame(0.5, in, rng.StreamState{Seed: 7, Draws: 3}, ws)
	require.Equal(t, 1, rec.Len())

	f := rec.Frames()[0]
	require.Equal(t, 0.5, f.T)
	require.Equal(t, in, f.Input)
	require.Equal(t, rng.StreamState{Seed: 7, Draws: 3}, f.RNG)
	require.Equal(t, []EntitySnapshot{
		{ID: a, Position: component.Position{X: 1.5, Y: -2, Z: 1.0 / 3}, Velocity: component.Velocity{VX: 0.1, VZ: -7e-300}, HasVelocity: true},
		{ID: b, Position: component.Position{X: math.MaxFloat64, Y: -1e-9}},
	}, f.Entities)
	require.Equal(t, Checksum(f.Entities), f.Checksum)

	// Snapshots are copies.
	p, _ := ws.Positions().Get(a)
	p.X = 99
	require.Equal(t, 1.5, rec.Frames()[0].Entities[0].Position.X)

	require.Equal(t, 1, rec.Stop())
	rec.RecordFrame(1, in, rng.StreamState{}, ws)
	require.Equal(t, 1, rec.Len())
	require.Equal(t, uint64(7), rec.Seed())
}

func recordFrames(t *testing.T, n int) *Recorder {
	t.Helper()
	ws, a, _ := newScene()
	rec := NewRecorder(nil)
	rec.Start(42)
	for i := 0; i < n; i++ {
		p, _ := ws.Positions().Get(a)
		p.X += 0.1
		rec.RecordFrame(float64(i)/60, input.Snapshot{Boost: i%2 == 0, CameraYaw: float64(i) * 0.01}, rng.StreamState{Seed: 42, Draws: uint64(i * 3)}, ws)
	}
	return rec
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rec := recordFrames(t, 20)
	path := filepath.Join(t.TempDir(), "run.replay")
	require.NoError(t, rec.Save(path))

	p := NewPlayer(nil)
	require.NoError(t, p.Load(path))
	require.Equal(t, uint64(42), p.Seed())
	require.Equal(t, rec.Frames(), p.frames)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "#nova_replay\nversion 2\nseed 42\nframe 0 42 0\n"))
}

func TestSaveEmpty(t *testing.T) {
	rec := NewRecorder(nil)
	require.ErrorIs(t, rec.Save(filepath.Join(t.TempDir(), "x")), ErrNoFrames)
}

func TestVersion1RoundTrip(t *testing.T) {
	rec := recordFrames(t, 3)
	rec.SetVersion(1)
	tr := rec.Trace()
	text := tr.String()
	require.NotContains(t, text, "version")
	require.NotContains(t, text, "checksum")

	got, err := Decode(strings.NewReader(text))
	require.NoError(t, err)
	require.Equal(t, 1, got.Version)
	require.Len(t, got.Frames, 3)
	for i, f := range got.Frames {
		require.Empty(t, f.Checksum)
		require.Equal(t, tr.Frames[i].T, f.T)
		require.Equal(t, tr.Frames[i].Input, f.Input)
		// Version 1 has no velocity flag; every entity reads back with one.
		for _, e := range f.Entities {
			require.True(t, e.HasVelocity)
		}
	}
}

func TestDecodeTolerance(t *testing.T) {
	text := `#nova_replay
seed 9
garbage outside frames
frame 0.5 9 0
input 1 0 0 0 0 0 0 0 0 0 0 1 0.5
entity 1 1 2 3 4 5 6
future_token 1 2 3
entity 2 9 9 9 9 9 9
frame 1 9 4
input 0 0 0 0 0 0 0 0 0 0 0 0 0
endframe
frame 2 9 8
entity 3 1 1 1 0 0 0 0
`
	tr, err := Decode(strings.NewReader(text))
	require.NoError(t, err)
	require.Equal(t, uint64(9), tr.Seed)
	require.Len(t, tr.Frames, 3)

	require.Equal(t, input.Snapshot{Forward: true, Right: true, CameraYaw: 0.5}, tr.Frames[0].Input)
	require.Len(t, tr.Frames[0].Entities, 1, "unknown token ends the frame")
	require.Equal(t, rng.StreamState{Seed: 9, Draws: 4}, tr.Frames[1].RNG)
	require.Equal(t, []EntitySnapshot{{ID: 3, Position: component.Position{X: 1, Y: 1, Z: 1}}}, tr.Frames[2].Entities)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrEmptyTrace},
		{"header only", "#nova_replay\nseed 1\n", ErrEmptyTrace},
		{"bad seed", "#nova_replay\nseed x\n", ErrMalformedTrace},
		{"short frame", "frame 1 2\n", ErrMalformedTrace},
		{"bad time", "frame abc 1 2\nendframe\n", ErrMalformedTrace},
		{"short input", "frame 0 1 0\ninput 1 0 1\nendframe\n", ErrMalformedTrace},
		{"bad flag", "frame 0 1 0\ninput 2 0 0 0 0 0 0 0 0 0 0 0 0\nendframe\n", ErrMalformedTrace},
		{"short entity", "frame 0 1 0\nentity 1 2 3\nendframe\n", ErrMalformedTrace},
		{"entity id overflow", "frame 0 1 0\nentity 4294967296 0 0 0 0 0 0\nendframe\n", ErrMalformedTrace},
		{"future version", "#nova_replay\nversion 3\nframe 0 1 0\nendframe\n", ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.text))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMalformedReportsLine(t *testing.T) {
	_, err := Decode(strings.NewReader("#nova_replay\nseed 1\nframe 0 1 0\ninput nope\n"))
	require.ErrorIs(t, err, ErrMalformedTrace)
	require.Contains(t, err.Error(), "line 4")
}

func TestLoadFailureKeepsPlayerIdle(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.replay")
	require.NoError(t, os.WriteFile(empty, []byte("#nova_replay\nseed 1\n"), 0o644))

	p := NewPlayer(nil)
	require.ErrorIs(t, p.Load(empty), ErrEmptyTrace)
	require.Error(t, p.Load(filepath.Join(dir, "missing.replay")))
	require.False(t, p.Begin())
	require.Zero(t, p.Len())
}

func TestPlayerCursor(t *testing.T) {
	rec := recordFrames(t, 3)
	p := NewPlayer(nil)
	require.NoError(t, p.LoadTrace(rec.Trace()))
	require.False(t, p.IsPlaying())

	_, ok := p.Next()
	require.False(t, ok, "not armed")

	require.True(t, p.Begin())
	for i := 0; i < 3; i++ {
		require.True(t, p.IsPlaying())
		f, ok := p.Next()
		require.True(t, ok)
		require.Equal(t, float64(i)/60, f.T)
	}
	require.False(t, p.IsPlaying(), "cleared after the last frame")
	require.Equal(t, 3, p.Consumed())

	f, ok := p.Next()
	require.False(t, ok)
	require.Nil(t, f)
	require.False(t, p.IsPlaying())

	require.True(t, p.Begin())
	p.Next()
	p.Stop()
	require.False(t, p.IsPlaying())
	require.Zero(t, p.Consumed())
}

func TestApply(t *testing.T) {
	ws, a, b := newScene()
	c := ws.Create()
	ws.Positions().Set(c, &component.Position{})

	f := &Frame{Entities: []EntitySnapshot{
		{ID: a, Position: component.Position{X: 10}, Velocity: component.Velocity{VY: 2}, HasVelocity: true},
		{ID: b, Position: component.Position{X: 20}, Velocity: component.Velocity{VY: 3}, HasVelocity: true},
		{ID: c, Position: component.Position{X: 30}},
		{ID: 77, Position: component.Position{X: 40}},
	}}
	ws.Destroy(c)
	ws.ECS().FlushDestroyQueue()

	NewPlayer(nil).Apply(f, ws)

	pa, _ := ws.Positions().Get(a)
	va, _ := ws.Velocities().Get(a)
	require.Equal(t, component.Position{X: 10}, *pa)
	require.Equal(t, component.Velocity{VY: 2}, *va)

	pb, _ := ws.Positions().Get(b)
	require.Equal(t, component.Position{X: 20}, *pb)
	require.False(t, ws.Velocities().Has(b), "velocity is never added")
	require.False(t, ws.Alive(77))
}

func TestVerify(t *testing.T) {
	ws, a, _ := newScene()
	f := &Frame{Entities: Snapshot(ws)}
	f.Checksum = Checksum(f.Entities)

	p := NewPlayer(nil)
	_, ok := p.Verify(f, ws)
	require.True(t, ok)

	v, _ := ws.Velocities().Get(a)
	v.VX = math.Nextafter(v.VX, 1)
	actual, ok := p.Verify(f, ws)
	require.False(t, ok)
	require.NotEqual(t, f.Checksum, actual)

	_, ok = p.Verify(&Frame{}, ws)
	require.True(t, ok)
}

func TestChecksumStable(t *testing.T) {
	require.Len(t, Checksum(nil), 64)
	e := []EntitySnapshot{{ID: 1, Position: component.Position{X: 1}}}
	require.Equal(t, Checksum(e), Checksum(e))
	e2 := []EntitySnapshot{{ID: 1, Position: component.Position{X: 1}, HasVelocity: true}}
	require.NotEqual(t, Checksum(e), Checksum(e2))
}
