// Package vec provides the small amount of 3-component vector math the
// simulation core needs. Positions use a ground-plane convention: X/Z span
// the layout plane, Y is vertical.
package vec

import "math"

// V3 is a 3-component vector of float64.
type V3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Zero is the zero vector.
var Zero = V3{}

// Add returns v + o.
func (v V3) Add(o V3) V3 {
	return V3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v V3) Sub(o V3) V3 {
	return V3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v V3) Scale(s float64) V3 {
	return V3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v V3) Dot(o V3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Len returns the Euclidean length of v.
func (v V3) Len() float64 {
	return math.Sqrt(v.LenSq())
}

// LenSq returns the squared length of v. Cheaper than Len when only
// comparisons are needed.
func (v V3) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalized returns v scaled to unit length, or the zero vector when v is
// too short to normalize safely.
func (v V3) Normalized() V3 {
	l := v.Len()
	if l < 1e-12 {
		return Zero
	}
	return v.Scale(1 / l)
}

// ClampLen returns v with its length limited to max. Vectors already within
// the limit are returned unchanged.
func (v V3) ClampLen(max float64) V3 {
	if max <= 0 {
		return Zero
	}
	l := v.Len()
	if l <= max {
		return v
	}
	return v.Scale(max / l)
}
