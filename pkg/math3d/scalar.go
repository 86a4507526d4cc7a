package math3d

import "math"

// Tolerances for float comparison.
const (
	EpsilonE3 = 1e-3
	EpsilonE6 = 1e-6
	Epsilon   = 1e-12
)

// ApproxEqual reports whether x and y differ by less than eps.
func ApproxEqual(x, y, eps float64) bool {
	return math.Abs(x-y) < eps
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * (180 / math.Pi)
}
