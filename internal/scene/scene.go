// Package scene holds the immutable triangle arena used for occlusion
// tests. The arena is flat vertex/index buffers built once per
// terrain+buildings set and shared read-only across every shadow pass, so
// parallel workers need no locking. Occluders are grouped (terrain, one
// group per building) and indexed in a 2D R-tree so a ray only tests the
// triangles of groups whose footprint its shadow path crosses.
package scene

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/heliosite/engine/internal/terrain"
	"github.com/heliosite/engine/pkg/core"
)

// rayOffsetPadM is added to the scene diameter when placing ray origins, so
// the origin is always strictly outside the geometry.
const rayOffsetPadM = 10.0

// group is one occluder: a contiguous triangle range plus its 2D extent.
type group struct {
	triStart, triEnd int // [triStart, triEnd)
	rect             rtreego.Rect
}

func (g *group) Bounds() rtreego.Rect {
	return g.rect
}

// Scene is the read-only intersection arena.
type Scene struct {
	vertices  []r3.Vec
	triangles [][3]int
	groups    []*group
	index     *rtreego.Rtree

	center r3.Vec
	radius float64

	minZ, maxZ float64
}

// Build constructs the arena from a terrain mesh (may be nil for flat-datum
// analyses) and building massings. Buildings are extruded from z=0 to their
// height: two triangles per side quad and a roof fan at the top.
func Build(mesh *terrain.Mesh, massings []core.Massing) *Scene {
	s := &Scene{
		minZ: math.Inf(1),
		maxZ: math.Inf(-1),
	}

	if mesh != nil {
		start := len(s.triangles)
		base := len(s.vertices)
		for _, v := range mesh.Vertices {
			s.addVertex(r3.Vec{X: v.X, Y: v.Y, Z: v.Z})
		}
		for _, tri := range mesh.Triangles {
			s.triangles = append(s.triangles, [3]int{base + tri[0], base + tri[1], base + tri[2]})
		}
		s.addGroup(start, len(s.triangles))
	}

	for _, m := range massings {
		s.addExtrusion(m)
	}

	s.buildIndex()
	s.computeExtent()
	return s
}

// TriangleCount reports the arena size, mainly for logging and telemetry.
func (s *Scene) TriangleCount() int {
	return len(s.triangles)
}

func (s *Scene) addVertex(v r3.Vec) int {
	s.vertices = append(s.vertices, v)
	if v.Z < s.minZ {
		s.minZ = v.Z
	}
	if v.Z > s.maxZ {
		s.maxZ = v.Z
	}
	return len(s.vertices) - 1
}

func (s *Scene) addExtrusion(m core.Massing) {
	n := len(m.Footprint)
	if n < 3 || m.HeightMeters <= 0 {
		return
	}

	start := len(s.triangles)

	bottom := make([]int, n)
	top := make([]int, n)
	for i, p := range m.Footprint {
		bottom[i] = s.addVertex(r3.Vec{X: p.X, Y: p.Y, Z: 0})
		top[i] = s.addVertex(r3.Vec{X: p.X, Y: p.Y, Z: m.HeightMeters})
	}

	// Side quads between consecutive edge points.
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		s.triangles = append(s.triangles,
			[3]int{bottom[i], bottom[j], top[j]},
			[3]int{bottom[i], top[j], top[i]},
		)
	}

	// Roof: the footprint ring at z=height. Ear clipping keeps every
	// roof triangle inside the ring, so concave footprints (courtyards,
	// notches) do not shade ground outside the building.
	for _, tri := range triangulateRing(m.Footprint) {
		s.triangles = append(s.triangles, [3]int{top[tri[0]], top[tri[1]], top[tri[2]]})
	}

	s.addGroup(start, len(s.triangles))
}

// triangulateRing splits a simple polygon ring into triangles by ear
// clipping. The returned triples index into ring. A degenerate ring that
// yields no ear falls back to a fan over the remaining vertices.
func triangulateRing(ring []core.PlanarPoint) [][3]int {
	n := len(ring)
	if n < 3 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Normalize to counter-clockwise so the ear sign test is stable.
	if signedArea(ring) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	tris := make([][3]int, 0, n-2)
	for len(idx) > 3 {
		clipped := false
		m := len(idx)
		for i := 0; i < m; i++ {
			prev, cur, next := idx[(i+m-1)%m], idx[i], idx[(i+1)%m]
			if !isEar(ring, idx, prev, cur, next) {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			for i := 1; i < len(idx)-1; i++ {
				tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
			}
			return tris
		}
	}
	return append(tris, [3]int{idx[0], idx[1], idx[2]})
}

func signedArea(ring []core.PlanarPoint) float64 {
	var sum float64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

func cross2(a, b, c core.PlanarPoint) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// isEar reports whether the corner prev->cur->next is convex and contains
// no other remaining ring vertex.
func isEar(ring []core.PlanarPoint, idx []int, prev, cur, next int) bool {
	a, b, c := ring[prev], ring[cur], ring[next]
	if cross2(a, b, c) <= 0 {
		return false
	}
	for _, k := range idx {
		if k == prev || k == cur || k == next {
			continue
		}
		if pointInTriangle(ring[k], a, b, c) {
			return false
		}
	}
	return true
}

func pointInTriangle(p, a, b, c core.PlanarPoint) bool {
	return cross2(a, b, p) >= 0 && cross2(b, c, p) >= 0 && cross2(c, a, p) >= 0
}

func (s *Scene) addGroup(triStart, triEnd int) {
	if triEnd <= triStart {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, tri := range s.triangles[triStart:triEnd] {
		for _, idx := range tri {
			v := s.vertices[idx]
			minX = math.Min(minX, v.X)
			minY = math.Min(minY, v.Y)
			maxX = math.Max(maxX, v.X)
			maxY = math.Max(maxY, v.Y)
		}
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{math.Max(maxX-minX, 0.01), math.Max(maxY-minY, 0.01)},
	)
	if err != nil {
		return
	}
	s.groups = append(s.groups, &group{triStart: triStart, triEnd: triEnd, rect: rect})
}

func (s *Scene) buildIndex() {
	s.index = rtreego.NewTree(2, 4, 16)
	for _, g := range s.groups {
		s.index.Insert(g)
	}
}

func (s *Scene) computeExtent() {
	if len(s.vertices) == 0 {
		s.minZ, s.maxZ = 0, 0
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range s.vertices {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	s.center = r3.Vec{
		X: (minX + maxX) / 2,
		Y: (minY + maxY) / 2,
		Z: (s.minZ + s.maxZ) / 2,
	}
	dx, dy, dz := maxX-minX, maxY-minY, s.maxZ-s.minZ
	s.radius = math.Sqrt(dx*dx+dy*dy+dz*dz) / 2
}

// RayOffsetFrom is the distance along the sun direction at which the
// occlusion ray origin is placed for a given point: far enough that the
// origin is outside all geometry and the segment back to the point spans
// the whole scene.
func (s *Scene) RayOffsetFrom(point r3.Vec) float64 {
	return r3.Norm(r3.Sub(point, s.center)) + s.radius + rayOffsetPadM
}

// Occluded tests whether anything blocks the sun from reaching point. The
// ray starts RayOffsetFrom(point) along the sun direction and points back
// toward the point; the point is occluded iff a hit occurs strictly closer
// than the point itself (minus selfHitEpsilonM, so the ground surface under
// the point does not shade it).
func (s *Scene) Occluded(point r3.Vec, sunDir r3.Vec) bool {
	offset := s.RayOffsetFrom(point)
	origin := r3.Add(point, r3.Scale(offset, sunDir))
	dir := r3.Scale(-1, sunDir)
	maxT := offset - selfHitEpsilonM

	if s.index == nil {
		return false
	}

	// Prune by the 2D footprint of the ray segment.
	segEnd := r3.Add(origin, r3.Scale(maxT, dir))
	minX := math.Min(origin.X, segEnd.X)
	minY := math.Min(origin.Y, segEnd.Y)
	maxX := math.Max(origin.X, segEnd.X)
	maxY := math.Max(origin.Y, segEnd.Y)
	rect, err := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{math.Max(maxX-minX, 0.01), math.Max(maxY-minY, 0.01)},
	)
	if err != nil {
		return false
	}

	for _, spatial := range s.index.SearchIntersect(rect) {
		g := spatial.(*group)
		for _, tri := range s.triangles[g.triStart:g.triEnd] {
			t, ok := intersectTriangle(origin, dir,
				s.vertices[tri[0]], s.vertices[tri[1]], s.vertices[tri[2]])
			if ok && t < maxT {
				return true
			}
		}
	}
	return false
}
