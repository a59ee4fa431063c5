package scene

import "gonum.org/v1/gonum/spatial/r3"

// selfHitEpsilonM guards against a ray re-intersecting the surface its
// target point lies on.
const selfHitEpsilonM = 0.01

// triEpsilon rejects rays parallel to a triangle's plane.
const triEpsilon = 1e-9

// intersectTriangle runs Möller–Trumbore against one triangle. Both faces
// are treated as solid; an occluder shades regardless of which side the ray
// approaches from. Returns the ray parameter t and whether a forward hit
// exists.
func intersectTriangle(origin, dir, a, b, c r3.Vec) (t float64, ok bool) {
	edge1 := r3.Sub(b, a)
	edge2 := r3.Sub(c, a)
	h := r3.Cross(dir, edge2)
	det := r3.Dot(edge1, h)
	if det > -triEpsilon && det < triEpsilon {
		// Ray is parallel to the triangle's plane.
		return 0, false
	}
	invDet := 1 / det
	s := r3.Sub(origin, a)
	u := invDet * r3.Dot(s, h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := r3.Cross(s, edge1)
	v := invDet * r3.Dot(dir, q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t = invDet * r3.Dot(edge2, q)
	if t < triEpsilon {
		// Line intersection behind the origin, not a ray intersection.
		return 0, false
	}
	return t, true
}
