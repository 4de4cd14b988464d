package camera

import (
	"log/slog"

	"github.com/Versifine/stride/internal/motion"
	"github.com/go-gl/mathgl/mgl64"
)

const basisEpsilon = 1e-9

type Mode uint8

const (
	ModeIdle Mode = iota
	ModeTracking
)

func (m Mode) String() string {
	if m == ModeTracking {
		return "tracking"
	}
	return "idle"
}

// State is what the renderer reads each frame. Smoothing is the fraction of
// the previous eye position kept per tick: 0 snaps, values near 1 lag.
type State struct {
	Eye       mgl64.Vec3
	Target    mgl64.Vec3
	Up        mgl64.Vec3
	Smoothing float64
}

func DefaultState() State {
	return State{
		Eye:       mgl64.Vec3{-2, 2.5, 5},
		Target:    mgl64.Vec3{0, 0, 0},
		Up:        motion.Up,
		Smoothing: 0.9,
	}
}

// Basis derives the camera's world-space direction vectors.
func (s State) Basis() motion.Basis {
	forward := s.Target.Sub(s.Eye)
	if forward.Len() < basisEpsilon {
		forward = mgl64.Vec3{0, 0, -1}
	}
	forward = forward.Normalize()

	up := s.Up
	if up.Len() < basisEpsilon {
		up = motion.Up
	}
	right := forward.Cross(up)
	if right.Len() < basisEpsilon {
		// looking straight along up; any horizontal axis will do
		right = mgl64.Vec3{1, 0, 0}
	}
	right = right.Normalize()

	return motion.Basis{
		Forward: forward,
		Back:    forward.Mul(-1),
		Left:    right.Mul(-1),
		Right:   right,
	}
}

// Follow moves s one tick toward tracked. The target snaps to tracked; the
// eye closes 1-Smoothing of the gap to tracked+offset.
func Follow(s State, offset, tracked mgl64.Vec3) State {
	s.Target = tracked
	s.Eye = lerpVec(s.Eye, tracked.Add(offset), 1-clampUnit(s.Smoothing))
	return s
}

// Rig keeps the camera locked on a tracked entity while preserving the
// eye-to-target offset it was created with.
type Rig struct {
	state  State
	offset mgl64.Vec3
	mode   Mode
}

func NewRig(initial State) *Rig {
	initial.Smoothing = clampUnit(initial.Smoothing)
	if initial.Up.Len() < basisEpsilon {
		initial.Up = motion.Up
	}
	return &Rig{
		state:  initial,
		offset: initial.Eye.Sub(initial.Target),
		mode:   ModeIdle,
	}
}

// Update advances the rig by one tick. A nil tracked position leaves eye and
// target untouched and puts the rig in idle mode.
func (r *Rig) Update(tracked *mgl64.Vec3) State {
	next := ModeIdle
	if tracked != nil {
		next = ModeTracking
		r.state = Follow(r.state, r.offset, *tracked)
	}
	if next != r.mode {
		slog.Debug("Camera mode changed", "from", r.mode, "to", next)
		r.mode = next
	}
	return r.state
}

// Orbit swings the eye around the target about the up axis.
func (r *Rig) Orbit(degrees float64) {
	q := mgl64.QuatRotate(mgl64.DegToRad(degrees), r.state.Up.Normalize())
	r.offset = q.Rotate(r.offset)
	r.state.Eye = r.state.Target.Add(q.Rotate(r.state.Eye.Sub(r.state.Target)))
}

func (r *Rig) State() State {
	return r.state
}

func (r *Rig) Mode() Mode {
	return r.mode
}

func (r *Rig) Offset() mgl64.Vec3 {
	return r.offset
}
