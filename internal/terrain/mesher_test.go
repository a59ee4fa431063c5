package terrain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliosite/engine/internal/geo"
	"github.com/heliosite/engine/pkg/core"
)

// flatCloud builds a deterministic scattered cloud at constant elevation.
func flatCloud(extent float64, spacing float64, z float64) []core.Position3D {
	var points []core.Position3D
	for y := -extent / 2; y <= extent/2; y += spacing {
		for x := -extent / 2; x <= extent/2; x += spacing {
			points = append(points, core.Position3D{X: x, Y: y, Z: z})
		}
	}
	return points
}

func TestBuildMesh_InsufficientPoints(t *testing.T) {
	m := NewMesher()

	mesh, report := m.BuildMesh(nil)
	assert.Nil(t, mesh)
	assert.Equal(t, 0, report.UsablePoints)
	require.NotEmpty(t, report.Warnings)

	mesh, report = m.BuildMesh([]core.Position3D{{X: 0, Y: 0, Z: 1}, {X: 10, Y: 0, Z: 1}})
	assert.Nil(t, mesh)
	assert.Equal(t, 2, report.UsablePoints)
}

func TestBuildMesh_SkipsMissingElevation(t *testing.T) {
	m := NewMesher()
	points := flatCloud(200, 20, 5)
	points = append(points, core.Position3D{X: 1, Y: 1, Z: math.NaN()})

	mesh, report := m.BuildMesh(points)
	require.NotNil(t, mesh)
	assert.Equal(t, 1, report.SkippedPoints)
	assert.Equal(t, len(points)-1, report.UsablePoints)
}

func TestBuildMesh_FlatCloudNormalsPointUp(t *testing.T) {
	m := NewMesher()

	mesh, _ := m.BuildMesh(flatCloud(300, 25, 42))
	require.NotNil(t, mesh)

	for i, n := range mesh.Normals {
		assert.InDelta(t, 0, n.X, 1e-9, "normal %d x", i)
		assert.InDelta(t, 0, n.Y, 1e-9, "normal %d y", i)
		assert.InDelta(t, 1, n.Z, 1e-9, "normal %d z", i)
	}
	for _, v := range mesh.Vertices {
		assert.InDelta(t, 42, v.Z, 1e-9)
	}
}

func TestBuildMesh_Deterministic(t *testing.T) {
	m := NewMesher()
	points := flatCloud(300, 17, 10)
	for i := range points {
		// shape the surface so interpolation actually blends
		points[i].Z = 10 + 0.05*points[i].X + 3*math.Sin(points[i].Y/40)
	}

	a, _ := m.BuildMesh(points)
	b, _ := m.BuildMesh(points)
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.Equal(t, a.Vertices, b.Vertices)
	assert.Equal(t, a.Triangles, b.Triangles)
	assert.Equal(t, a.Normals, b.Normals)
}

func TestBuildMesh_TriangleCountAndWinding(t *testing.T) {
	m := NewMesher()
	mesh, report := m.BuildMesh(flatCloud(300, 25, 0))
	require.NotNil(t, mesh)

	assert.GreaterOrEqual(t, report.Resolution, 15)
	assert.LessOrEqual(t, report.Resolution, 40)
	assert.Len(t, mesh.Triangles, 2*(mesh.Nx-1)*(mesh.Ny-1))

	// Consistent winding: every triangle's face normal has positive z on
	// flat terrain.
	for _, tri := range mesh.Triangles {
		a, b, c := mesh.Vertices[tri[0]], mesh.Vertices[tri[1]], mesh.Vertices[tri[2]]
		cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		assert.Greater(t, cross, 0.0)
	}
}

func TestAdaptiveResolution_Clamps(t *testing.T) {
	assert.Equal(t, 15, adaptiveResolution(4))    // floor(sqrt(4)/2)=1 → clamp up
	assert.Equal(t, 15, adaptiveResolution(900))  // sqrt=30/2=15 → boundary
	assert.Equal(t, 20, adaptiveResolution(1600)) // sqrt=40/2=20
	assert.Equal(t, 40, adaptiveResolution(9000)) // clamp down
}

func TestElevationAt_MatchesFlatSurface(t *testing.T) {
	m := NewMesher()
	mesh, _ := m.BuildMesh(flatCloud(300, 25, 7.5))
	require.NotNil(t, mesh)

	assert.InDelta(t, 7.5, mesh.ElevationAt(0, 0), 1e-9)
	assert.InDelta(t, 7.5, mesh.ElevationAt(-120, 90), 1e-9)
	// Clamped outside the lattice.
	assert.InDelta(t, 7.5, mesh.ElevationAt(10000, -10000), 1e-9)
}

func TestFlattenGrid(t *testing.T) {
	projector, err := geo.NewProjector(52.52, 13.405)
	require.NoError(t, err)

	grid := core.ElevationGrid{
		Resolution: core.GridResolution{Nx: 3, Ny: 2},
		BBox:       core.GridBBox{West: 13.404, South: 52.519, East: 13.406, North: 52.521},
		Values: [][]float64{
			{30, 31, math.NaN()},
			{33, 34, 35},
		},
		Provider: "test-dem",
	}

	points, warnings := FlattenGrid(grid, projector)
	assert.Len(t, points, 5)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "1 grid samples missing")
}

func TestFlattenGrid_Malformed(t *testing.T) {
	projector, err := geo.NewProjector(0, 0)
	require.NoError(t, err)

	points, warnings := FlattenGrid(core.ElevationGrid{
		Resolution: core.GridResolution{Nx: 2, Ny: 2},
		Values:     [][]float64{{1, 2}},
	}, projector)
	assert.Nil(t, points)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "malformed")
}
