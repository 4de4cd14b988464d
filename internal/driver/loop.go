package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Versifine/stride/internal/camera"
	"github.com/Versifine/stride/internal/keybind"
	"github.com/Versifine/stride/internal/motion"
	"github.com/Versifine/stride/internal/scene"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultTickRate = 60
	MaxTickRate     = 1000
	maxStep         = 250 * time.Millisecond
)

// Command is a change requested by the input layer. Commands run on the tick
// goroutine before movement is resolved.
type Command func(world *scene.World, rig *camera.Rig)

// Input is everything the host input layer hands over for one tick.
type Input struct {
	Keys     motion.KeySet
	Commands []Command
}

type InputSource interface {
	Poll() Input
}

// NoInput never holds a key. It drives the loop when no input device is
// attached.
type NoInput struct{}

func (NoInput) Poll() Input { return Input{} }

// FrameSink receives the result of every tick, e.g. a renderer.
type FrameSink interface {
	Render(frame Frame)
}

type Frame struct {
	Tick   uint64
	Held   []keybind.Action
	Player *scene.Player
	Camera camera.State
	Mode   camera.Mode
}

// Driver runs the per-tick pipeline in a fixed order: input, motion, player
// position, camera. It is not safe for concurrent use.
type Driver struct {
	bindings *keybind.Map
	world    *scene.World
	rig      *camera.Rig
	tickRate int
	tick     uint64
}

// New builds a driver. A nil bindings map means no key moves the player. The
// tick rate is clamped to 1..MaxTickRate, non-positive meaning the default.
func New(bindings *keybind.Map, world *scene.World, rig *camera.Rig, tickRate int) *Driver {
	if bindings == nil {
		bindings = keybind.Empty()
	}
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	if tickRate > MaxTickRate {
		tickRate = MaxTickRate
	}
	return &Driver{
		bindings: bindings,
		world:    world,
		rig:      rig,
		tickRate: tickRate,
	}
}

// Step applies queued commands and then advances one tick.
func (d *Driver) Step(in Input, dt float64) Frame {
	for _, cmd := range in.Commands {
		if cmd != nil {
			cmd(d.world, d.rig)
		}
	}
	return d.Tick(in.Keys, dt)
}

// Tick advances the scene by dt seconds with the given keys held.
func (d *Driver) Tick(pressed motion.KeySet, dt float64) Frame {
	d.tick++
	basis := d.rig.State().Basis()

	var tracked *mgl64.Vec3
	player, ok := d.world.Main()
	if ok {
		delta := motion.Resolve(pressed, d.bindings, basis, player.Speed, dt)
		player.Position = player.Position.Add(delta)
		pos := player.Position
		tracked = &pos
	}

	cam := d.rig.Update(tracked)

	frame := Frame{
		Tick:   d.tick,
		Held:   d.heldActions(pressed),
		Camera: cam,
		Mode:   d.rig.Mode(),
	}
	if ok {
		p := *player
		frame.Player = &p
	}
	return frame
}

func (d *Driver) heldActions(pressed motion.KeySet) []keybind.Action {
	var held []keybind.Action
	for _, a := range keybind.Actions() {
		if k, ok := d.bindings.Key(a); ok && pressed.Has(k) {
			held = append(held, a)
		}
	}
	return held
}

// Run ticks at the configured rate until ctx is cancelled. dt is measured
// from the wall clock and capped so a stalled process does not teleport the
// player.
func (d *Driver) Run(ctx context.Context, source InputSource, sink FrameSink) error {
	if d == nil {
		return fmt.Errorf("driver is nil")
	}
	if source == nil {
		return fmt.Errorf("driver input source is nil")
	}

	interval := time.Second / time.Duration(d.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Tick loop started", "tick_rate", d.tickRate, "bindings", d.bindings.Len())
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Tick loop stopped", "ticks", d.tick)
			return nil
		case now := <-ticker.C:
			dt := clampStep(now.Sub(last))
			last = now
			frame := d.Step(source.Poll(), dt.Seconds())
			if sink != nil {
				sink.Render(frame)
			}
		}
	}
}

func clampStep(dt time.Duration) time.Duration {
	if dt < 0 {
		return 0
	}
	if dt > maxStep {
		return maxStep
	}
	return dt
}

func (d *Driver) World() *scene.World {
	return d.world
}

func (d *Driver) Rig() *camera.Rig {
	return d.rig
}
