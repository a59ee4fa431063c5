// Package terrain builds a continuous triangulated elevation surface from a
// scattered point cloud. Points are binned into square cells to tame noisy,
// unevenly dense sources, then interpolated onto a regular lattice with
// inverse-distance weighting.
package terrain

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/heliosite/engine/pkg/core"
)

const (
	// DefaultBinSizeM is the deduplication bin edge length.
	DefaultBinSizeM = 30.0

	// influenceFactor scales the bin size into the IDW search radius.
	influenceFactor = 3.0

	// nearEpsilonM short-circuits IDW when a binned point coincides with a
	// lattice vertex, avoiding the 1/d² singularity.
	nearEpsilonM = 1e-3

	minResolution = 15
	maxResolution = 40
)

// Mesher configures terrain mesh construction. The zero value is not usable;
// call NewMesher.
type Mesher struct {
	BinSizeM float64
}

// NewMesher returns a mesher with the default bin size.
func NewMesher() *Mesher {
	return &Mesher{BinSizeM: DefaultBinSizeM}
}

// Report describes the quality of one mesh build.
type Report struct {
	InputPoints   int            `json:"inputPoints"`
	UsablePoints  int            `json:"usablePoints"`
	SkippedPoints int            `json:"skippedPoints"`
	Bins          int            `json:"bins"`
	Resolution    int            `json:"resolution"`
	Warnings      []core.Warning `json:"warnings,omitempty"`
}

// Mesh is a read-only triangulated terrain surface on a regular nx × ny
// lattice. It is built once per analysis session and shared across all
// shadow passes; nothing mutates it after construction.
type Mesh struct {
	Nx, Ny    int
	Vertices  []core.Position3D // row-major: iy*Nx + ix
	Triangles [][3]int          // consistent CCW winding viewed from above
	Normals   []core.Position3D
	Bounds    core.Bounds

	stepX, stepY float64
}

type bin struct {
	bx, by  int
	x, y, z float64 // running sums
	count   int
}

type binPoint struct {
	x, y, z float64
}

// BuildMesh constructs a mesh from local-frame points. Fewer than 3 usable
// points is not an error: it returns a nil mesh and a report explaining why,
// so callers can decide whether absent terrain is acceptable.
func (m *Mesher) BuildMesh(points []core.Position3D) (*Mesh, Report) {
	report := Report{InputPoints: len(points)}

	usable := make([]core.Position3D, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			report.SkippedPoints++
			continue
		}
		usable = append(usable, p)
	}
	if report.SkippedPoints > 0 {
		report.Warnings = append(report.Warnings, core.Warning{
			Stage:   "terrain",
			Message: fmt.Sprintf("skipped %d points with missing elevation", report.SkippedPoints),
		})
	}
	report.UsablePoints = len(usable)

	if len(usable) < 3 {
		report.Warnings = append(report.Warnings, core.Warning{
			Stage:   "terrain",
			Message: fmt.Sprintf("insufficient terrain data: %d usable points, need 3", len(usable)),
		})
		return nil, report
	}

	binned := m.binPoints(usable)
	report.Bins = len(binned)

	resolution := adaptiveResolution(len(binned))
	report.Resolution = resolution

	mesh := m.interpolate(binned, resolution)
	mesh.computeNormals()
	return mesh, report
}

// binPoints deduplicates the cloud into square bins, averaging elevations
// and positions per bin. Bins are emitted in sorted key order so the result
// never depends on map iteration.
func (m *Mesher) binPoints(points []core.Position3D) []binPoint {
	bins := make(map[[2]int]*bin)
	for _, p := range points {
		key := [2]int{
			int(math.Floor(p.X / m.BinSizeM)),
			int(math.Floor(p.Y / m.BinSizeM)),
		}
		b, ok := bins[key]
		if !ok {
			b = &bin{bx: key[0], by: key[1]}
			bins[key] = b
		}
		b.x += p.X
		b.y += p.Y
		b.z += p.Z
		b.count++
	}

	keys := make([][2]int, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	out := make([]binPoint, len(keys))
	for i, k := range keys {
		b := bins[k]
		n := float64(b.count)
		out[i] = binPoint{x: b.x / n, y: b.y / n, z: b.z / n}
	}
	return out
}

// adaptiveResolution sizes the output lattice from the binned point count:
// clamp(floor(sqrt(n)/2), 15, 40).
func adaptiveResolution(n int) int {
	r := int(math.Floor(math.Sqrt(float64(n)) / 2))
	if r < minResolution {
		return minResolution
	}
	if r > maxResolution {
		return maxResolution
	}
	return r
}

func (m *Mesher) interpolate(binned []binPoint, resolution int) *Mesh {
	bounds := core.Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, b := range binned {
		bounds.MinX = math.Min(bounds.MinX, b.x)
		bounds.MinY = math.Min(bounds.MinY, b.y)
		bounds.MaxX = math.Max(bounds.MaxX, b.x)
		bounds.MaxY = math.Max(bounds.MaxY, b.y)
	}

	nx, ny := resolution, resolution
	mesh := &Mesh{
		Nx:       nx,
		Ny:       ny,
		Vertices: make([]core.Position3D, nx*ny),
		Bounds:   bounds,
		stepX:    bounds.Width() / float64(nx-1),
		stepY:    bounds.Height() / float64(ny-1),
	}

	radius := m.BinSizeM * influenceFactor
	radiusSq := radius * radius

	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			vx := bounds.MinX + float64(ix)*mesh.stepX
			vy := bounds.MinY + float64(iy)*mesh.stepY
			mesh.Vertices[iy*nx+ix] = core.Position3D{X: vx, Y: vy, Z: idw(binned, vx, vy, radiusSq)}
		}
	}

	// Two triangles per lattice quad, CCW viewed from +z so normals point up
	// for non-overhanging terrain.
	mesh.Triangles = make([][3]int, 0, 2*(nx-1)*(ny-1))
	for iy := 0; iy < ny-1; iy++ {
		for ix := 0; ix < nx-1; ix++ {
			a := iy*nx + ix
			b := iy*nx + ix + 1
			c := (iy+1)*nx + ix + 1
			d := (iy+1)*nx + ix
			mesh.Triangles = append(mesh.Triangles, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}

	return mesh
}

// idw interpolates elevation at (x, y) with 1/d² weights over binned points
// within the influence radius. A coincident point short-circuits to its own
// elevation. Zero total weight (no points in range) falls back to the
// nearest binned point rather than propagating NaN.
func idw(binned []binPoint, x, y, radiusSq float64) float64 {
	var weightSum, weighted float64
	nearestDistSq := math.Inf(1)
	nearestZ := 0.0

	for _, b := range binned {
		dx := b.x - x
		dy := b.y - y
		distSq := dx*dx + dy*dy
		if distSq < nearestDistSq {
			nearestDistSq = distSq
			nearestZ = b.z
		}
		if distSq < nearEpsilonM*nearEpsilonM {
			return b.z
		}
		if distSq > radiusSq {
			continue
		}
		w := 1 / distSq
		weightSum += w
		weighted += w * b.z
	}

	if weightSum == 0 {
		return nearestZ
	}
	return weighted / weightSum
}

func (mesh *Mesh) computeNormals() {
	mesh.Normals = make([]core.Position3D, len(mesh.Vertices))
	accum := make([]r3.Vec, len(mesh.Vertices))

	for _, tri := range mesh.Triangles {
		a := toVec(mesh.Vertices[tri[0]])
		b := toVec(mesh.Vertices[tri[1]])
		c := toVec(mesh.Vertices[tri[2]])
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		for _, idx := range tri {
			accum[idx] = r3.Add(accum[idx], n)
		}
	}

	for i, n := range accum {
		if r3.Norm(n) == 0 {
			// Degenerate vertex (zero-area fan); default to straight up.
			mesh.Normals[i] = core.Position3D{Z: 1}
			continue
		}
		u := r3.Unit(n)
		mesh.Normals[i] = core.Position3D{X: u.X, Y: u.Y, Z: u.Z}
	}
}

// ElevationAt samples the ground elevation directly from the mesh surface at
// (x, y), evaluating the plane of the containing triangle. Points outside
// the lattice clamp to its edge.
func (mesh *Mesh) ElevationAt(x, y float64) float64 {
	fx, fy := 0.0, 0.0
	if mesh.stepX > 0 {
		fx = (x - mesh.Bounds.MinX) / mesh.stepX
	}
	if mesh.stepY > 0 {
		fy = (y - mesh.Bounds.MinY) / mesh.stepY
	}

	fx = math.Max(0, math.Min(fx, float64(mesh.Nx-1)))
	fy = math.Max(0, math.Min(fy, float64(mesh.Ny-1)))

	ix := int(fx)
	iy := int(fy)
	if ix >= mesh.Nx-1 {
		ix = mesh.Nx - 2
	}
	if iy >= mesh.Ny-1 {
		iy = mesh.Ny - 2
	}
	u := fx - float64(ix)
	v := fy - float64(iy)

	a := mesh.Vertices[iy*mesh.Nx+ix]
	b := mesh.Vertices[iy*mesh.Nx+ix+1]
	c := mesh.Vertices[(iy+1)*mesh.Nx+ix+1]
	d := mesh.Vertices[(iy+1)*mesh.Nx+ix]

	// The quad is split along the a-c diagonal, matching the triangle
	// buffer, so sampled elevations agree with the geometry rays hit.
	if u >= v {
		return a.Z + u*(b.Z-a.Z) + v*(c.Z-b.Z)
	}
	return a.Z + v*(d.Z-a.Z) + u*(c.Z-d.Z)
}

func toVec(p core.Position3D) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}
