package camera

import "github.com/go-gl/mathgl/mgl64"

func lerpVec(from, to mgl64.Vec3, t float64) mgl64.Vec3 {
	t = clampUnit(t)
	if t == 1 {
		return to
	}
	return from.Add(to.Sub(from).Mul(t))
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
