package motion

import (
	"github.com/Versifine/stride/internal/keybind"
	"github.com/go-gl/mathgl/mgl64"
)

const directionEpsilon = 1e-9

// Up is the world vertical axis. Movement never has a component along it.
var Up = mgl64.Vec3{0, 1, 0}

// Basis is the camera's horizontal frame in world space for the current tick.
type Basis struct {
	Forward mgl64.Vec3
	Back    mgl64.Vec3
	Left    mgl64.Vec3
	Right   mgl64.Vec3
}

// KeySet is the set of keys held down during a tick.
type KeySet map[keybind.KeyID]struct{}

func NewKeySet(keys ...keybind.KeyID) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s KeySet) Has(k keybind.KeyID) bool {
	_, ok := s[k]
	return ok
}

// Resolve turns the held keys into a displacement for one tick. Every held
// movement key contributes its basis vector; the sum is flattened onto the
// horizontal plane, normalised and scaled by speed*dt. Jump has no effect.
func Resolve(pressed KeySet, bindings *keybind.Map, basis Basis, speed, dt float64) mgl64.Vec3 {
	if dt < 0 {
		dt = 0
	}

	var held [keybind.Jump + 1]bool
	for k := range pressed {
		if a, ok := bindings.Action(k); ok {
			held[a] = true
		}
	}

	var direction mgl64.Vec3
	if held[keybind.Forward] {
		direction = direction.Add(basis.Forward)
	}
	if held[keybind.Backward] {
		direction = direction.Add(basis.Back)
	}
	if held[keybind.Left] {
		direction = direction.Add(basis.Left)
	}
	if held[keybind.Right] {
		direction = direction.Add(basis.Right)
	}

	direction = flatten(direction)
	return normalizeOrZero(direction).Mul(speed * dt)
}

func flatten(v mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(Up.Mul(v.Dot(Up)))
}

func normalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < directionEpsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
