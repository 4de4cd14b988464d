package driver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Versifine/stride/internal/camera"
	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/keybind"
	"github.com/Versifine/stride/internal/motion"
	"github.com/Versifine/stride/internal/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapCamera() camera.State {
	return camera.State{
		Eye:       mgl64.Vec3{0, 2, 5},
		Target:    mgl64.Vec3{0, 0.5, 0},
		Up:        mgl64.Vec3{0, 1, 0},
		Smoothing: 0,
	}
}

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	m, err := keybind.Build(config.Default())
	require.NoError(t, err)
	return New(m, scene.NewDefaultWorld(), camera.NewRig(snapCamera()), 0)
}

func TestTickMovesPlayerThenCamera(t *testing.T) {
	d := newTestDriver(t)

	frame := d.Tick(motion.NewKeySet(keybind.KeyW), 0.1)

	require.NotNil(t, frame.Player)
	assert.InDelta(t, 0.0, frame.Player.Position.X(), 1e-9)
	assert.InDelta(t, 0.5, frame.Player.Position.Y(), 1e-9)
	assert.InDelta(t, -0.25, frame.Player.Position.Z(), 1e-9)

	// camera already sees the new position in the same tick
	assert.Equal(t, frame.Player.Position, frame.Camera.Target)
	assert.Equal(t, camera.ModeTracking, frame.Mode)
	assert.Equal(t, []keybind.Action{keybind.Forward}, frame.Held)
	assert.Equal(t, uint64(1), frame.Tick)
}

func TestTickWithoutMainPlayerLeavesCameraIdle(t *testing.T) {
	d := newTestDriver(t)
	d.World().ClearMain()
	before := d.Rig().State()

	frame := d.Tick(motion.NewKeySet(keybind.KeyW, keybind.KeyD), 0.1)

	assert.Nil(t, frame.Player)
	assert.Equal(t, before.Eye, frame.Camera.Eye)
	assert.Equal(t, before.Target, frame.Camera.Target)
	assert.Equal(t, camera.ModeIdle, frame.Mode)

	p, ok := d.World().Player(scene.DefaultPlayerID)
	require.True(t, ok)
	assert.Equal(t, scene.DefaultSpawn, p.Position)
}

func TestNilBindingsNeverMove(t *testing.T) {
	d := New(nil, scene.NewDefaultWorld(), camera.NewRig(snapCamera()), 0)

	frame := d.Tick(motion.NewKeySet(keybind.KeyW, keybind.KeyA, keybind.KeyS, keybind.KeyD), 1)

	require.NotNil(t, frame.Player)
	assert.Equal(t, scene.DefaultSpawn, frame.Player.Position)
	assert.Empty(t, frame.Held)
}

func TestStepAppliesCommandsFirst(t *testing.T) {
	d := newTestDriver(t)

	teleport := func(w *scene.World, _ *camera.Rig) {
		p, _ := w.Main()
		p.Position = mgl64.Vec3{10, 0, 10}
	}
	frame := d.Step(Input{Keys: motion.NewKeySet(keybind.KeyD), Commands: []Command{nil, teleport}}, 1)

	require.NotNil(t, frame.Player)
	assert.InDelta(t, 12.5, frame.Player.Position.X(), 1e-9)
	assert.InDelta(t, 10.0, frame.Player.Position.Z(), 1e-9)
}

func TestFrameDoesNotAliasWorld(t *testing.T) {
	d := newTestDriver(t)
	frame := d.Tick(nil, 0.1)
	frame.Player.Position = mgl64.Vec3{99, 99, 99}

	p, _ := d.World().Main()
	assert.Equal(t, scene.DefaultSpawn, p.Position)
}

func TestClampStep(t *testing.T) {
	assert.Equal(t, time.Duration(0), clampStep(-time.Second))
	assert.Equal(t, 16*time.Millisecond, clampStep(16*time.Millisecond))
	assert.Equal(t, maxStep, clampStep(5*time.Second))
}

type scriptedSource struct {
	mu    sync.Mutex
	polls int
}

func (s *scriptedSource) Poll() Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	return Input{Keys: motion.NewKeySet(keybind.KeyW)}
}

type recordingSink struct {
	mu     sync.Mutex
	frames []Frame
	cancel context.CancelFunc
	limit  int
}

func (r *recordingSink) Render(frame Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
	if len(r.frames) >= r.limit {
		r.cancel()
	}
}

func TestRunTicksUntilCancelled(t *testing.T) {
	m, err := keybind.Build(config.Default())
	require.NoError(t, err)
	d := New(m, scene.NewDefaultWorld(), camera.NewRig(snapCamera()), 200)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	source := &scriptedSource{}
	sink := &recordingSink{cancel: cancel, limit: 3}

	require.NoError(t, d.Run(ctx, source, sink))

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.GreaterOrEqual(t, len(sink.frames), 3)
	last := sink.frames[len(sink.frames)-1]
	require.NotNil(t, last.Player)
	assert.Less(t, last.Player.Position.Z(), 0.0)
	assert.Equal(t, uint64(len(sink.frames)), last.Tick)
}

func TestNewClampsTickRate(t *testing.T) {
	w := scene.NewDefaultWorld()
	rig := camera.NewRig(snapCamera())

	assert.Equal(t, DefaultTickRate, New(nil, w, rig, 0).tickRate)
	assert.Equal(t, DefaultTickRate, New(nil, w, rig, -5).tickRate)
	assert.Equal(t, MaxTickRate, New(nil, w, rig, 2000000000).tickRate)
}

func TestRunWithHugeTickRate(t *testing.T) {
	d := New(nil, scene.NewDefaultWorld(), camera.NewRig(snapCamera()), 2000000000)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sink := &recordingSink{cancel: cancel, limit: 2}

	require.NotPanics(t, func() {
		require.NoError(t, d.Run(ctx, NoInput{}, sink))
	})
	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.GreaterOrEqual(t, len(sink.frames), 2)
}

func TestRunRequiresSource(t *testing.T) {
	d := newTestDriver(t)
	assert.Error(t, d.Run(context.Background(), nil, nil))
}
