// Package analysis orchestrates one site session: it projects the input
// data into the local frame, builds the terrain mesh, extracts building
// massings, assembles the occlusion scene, and exposes the analysis
// operations over that shared state.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/heliosite/engine/internal/cache"
	"github.com/heliosite/engine/internal/config"
	"github.com/heliosite/engine/internal/exposure"
	"github.com/heliosite/engine/internal/geo"
	"github.com/heliosite/engine/internal/massing"
	"github.com/heliosite/engine/internal/scene"
	"github.com/heliosite/engine/internal/shadow"
	"github.com/heliosite/engine/internal/solar"
	"github.com/heliosite/engine/internal/terrain"
	"github.com/heliosite/engine/pkg/core"
)

// ErrNoBounds is returned when neither the site extent nor the terrain
// mesh can provide an analysis rectangle.
var ErrNoBounds = errors.New("no analysis bounds: set site.extentMeters or provide terrain data")

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Dependencies holds all dependencies for the analysis service.
type Dependencies struct {
	Logger Logger
}

// Service owns the per-site state shared by every operation: the
// projector, terrain mesh, building massings and occlusion scene are
// built once and never mutated afterwards.
type Service struct {
	deps Dependencies

	site config.SiteConfig
	run  config.AnalysisConfig

	projector     *geo.Projector
	mesh          *terrain.Mesh
	meshReport    terrain.Report
	massings      []core.Massing
	massingReport core.MassingReport
	scene         *scene.Scene
	caster        *shadow.Caster
	bounds        core.Bounds

	warnings []core.Warning
	progress cache.SafeCounter
	paths    *cache.Store[core.SunPath]
}

// pathCacheTTL bounds how long a memoized sun path is reused. Paths are
// deterministic per date and step, so the TTL only caps memory held by
// long-lived sessions sweeping many dates.
const pathCacheTTL = time.Hour

// NewService builds the session state from the raw inputs. Data-quality
// problems surface as warnings on the service, not errors; only resource
// guards and invalid configuration fail construction.
func NewService(deps Dependencies, site config.SiteConfig, run config.AnalysisConfig,
	grid core.ElevationGrid, features geom.GeoJSONFeatureCollection) (*Service, error) {

	projector, err := geo.NewProjector(site.Latitude, site.Longitude)
	if err != nil {
		return nil, err
	}

	s := &Service{
		deps:      deps,
		site:      site,
		run:       run,
		projector: projector,
		paths:     cache.New[core.SunPath](),
	}

	points, flattenWarnings := terrain.FlattenGrid(grid, projector)
	s.warnings = append(s.warnings, flattenWarnings...)

	s.mesh, s.meshReport = terrain.NewMesher().BuildMesh(points)
	s.warnings = append(s.warnings, s.meshReport.Warnings...)

	s.massings, s.massingReport = massing.NewExtractor(projector).Extract(features)
	s.warnings = append(s.warnings, s.massingReport.Warnings...)

	s.scene = scene.Build(s.mesh, s.massings)

	s.bounds, err = analysisBounds(site, s.mesh)
	if err != nil {
		return nil, err
	}

	s.caster, err = shadow.NewCaster(run.Workers)
	if err != nil {
		return nil, err
	}

	deps.Logger.Info("Analysis session ready",
		"massings", len(s.massings),
		"triangles", s.scene.TriangleCount(),
		"meshPoints", s.meshReport.UsablePoints,
		"boundsDiagonalM", s.bounds.Diagonal(),
		"warnings", len(s.warnings),
	)
	return s, nil
}

// analysisBounds centers the grid on the site origin when an extent is
// configured, otherwise falls back to the terrain footprint.
func analysisBounds(site config.SiteConfig, mesh *terrain.Mesh) (core.Bounds, error) {
	if site.ExtentMeters > 0 {
		half := site.ExtentMeters / 2
		return core.Bounds{MinX: -half, MinY: -half, MaxX: half, MaxY: half}, nil
	}
	if mesh != nil {
		return mesh.Bounds, nil
	}
	return core.Bounds{}, ErrNoBounds
}

// Instant runs a single shadow pass for the given moment.
func (s *Service) Instant(t time.Time) (*core.AnalysisResult, error) {
	sun := solar.Position(s.site.Latitude, s.site.Longitude, t)
	s.deps.Logger.Debug("Instant pass",
		"time", t, "azimuth", sun.AzimuthDeg, "altitude", sun.AltitudeDeg)

	result, err := s.caster.Cast(sun, s.scene, s.mesh, s.bounds, s.run.CellSize)
	if err != nil {
		return nil, err
	}
	s.attachWarnings(result)
	return result, nil
}

// Daily accumulates sun-hours across the daylight portion of one date.
// Progress is reported both through onProgress and through Progress().
func (s *Service) Daily(ctx context.Context, date time.Time, onProgress shadow.ProgressFunc) (*core.AnalysisResult, error) {
	path, err := s.path(date)
	if err != nil {
		return nil, err
	}
	s.deps.Logger.Info("Daily accumulation",
		"date", date.Format("2006-01-02"),
		"passes", len(path.Positions),
		"stepMinutes", path.StepMinutes,
		"daylight", path.Duration())

	s.progress.Set(0)
	track := func(completed, total int) {
		s.progress.Set(completed)
		if onProgress != nil {
			onProgress(completed, total)
		}
	}

	result, err := s.caster.Accumulate(ctx, path, s.scene, s.mesh, s.bounds, s.run.CellSize, track)
	if err != nil {
		return nil, err
	}
	s.attachWarnings(result)
	return result, nil
}

// Facades computes the cumulative direct-sun hours on each cardinal
// facade of every building for one date.
func (s *Service) Facades(date time.Time) ([]core.FacadeExposure, error) {
	path, err := s.path(date)
	if err != nil {
		return nil, err
	}
	return exposure.Facades(path, s.massings), nil
}

// Events returns the named solar event times for one date at the site.
func (s *Service) Events(date time.Time) core.SolarEvents {
	return solar.Events(date, s.site.Latitude, s.site.Longitude)
}

// Progress returns the number of completed accumulation passes of the
// running or most recent Daily call.
func (s *Service) Progress() int {
	return s.progress.Value()
}

// MassingReport returns the building extraction report for the session.
func (s *Service) MassingReport() core.MassingReport {
	return s.massingReport
}

// MeshReport returns the terrain mesh build report for the session.
func (s *Service) MeshReport() terrain.Report {
	return s.meshReport
}

// Massings returns the extracted building massings.
func (s *Service) Massings() []core.Massing {
	return s.massings
}

// path returns the sun path for a date, memoized so a Daily run followed
// by Facades on the same date computes the ephemeris once.
func (s *Service) path(date time.Time) (core.SunPath, error) {
	step := s.run.StepMinutes
	if step <= 0 {
		step = solar.DefaultStepMinutes
	}

	key := fmt.Sprintf("%s/%d", date.Format("2006-01-02"), step)
	if cached, ok := s.paths.Get(key); ok {
		return cached, nil
	}

	path, err := solar.Path(s.site.Latitude, s.site.Longitude, date, step, time.Time{}, time.Time{})
	if err != nil {
		return core.SunPath{}, err
	}
	s.paths.Set(key, path, pathCacheTTL)
	return path, nil
}

// attachWarnings prepends the session's ingestion warnings so every
// result carries the full data-quality picture.
func (s *Service) attachWarnings(result *core.AnalysisResult) {
	if len(s.warnings) == 0 {
		return
	}
	merged := make([]core.Warning, 0, len(s.warnings)+len(result.Warnings))
	merged = append(merged, s.warnings...)
	merged = append(merged, result.Warnings...)
	result.Warnings = merged
}
