package geo

import (
	"errors"
	"math"

	"github.com/heliosite/engine/pkg/core"
	"github.com/wroge/wgs84"
)

// COORDINATE PROJECTION
// All site analysis runs in a local tangent-plane frame centered on the site
// (x=east, y=north, z=up, meters). One projector is constructed per site and
// shared by every component; nothing else reprojects on its own. The
// approximation is sub-meter for extents under a few kilometers and is not
// valid for analyses spanning tens of kilometers or crossing the poles.

// EarthRadiusM is the WGS84 equatorial radius used by the tangent plane.
const EarthRadiusM = 6378137.0

// ErrInvalidCoordinates is returned when coordinates are outside valid
// latitude/longitude ranges.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

const degToRad = math.Pi / 180

// Projector converts geographic coordinates to the site-local planar frame
// and back. It is stateless after construction and safe for concurrent use.
type Projector struct {
	lat0, lng0   float64
	metersPerLat float64
	metersPerLng float64
}

// NewProjector creates a projector centered on the given site origin.
func NewProjector(lat0, lng0 float64) (*Projector, error) {
	if lat0 < -90 || lat0 > 90 || lng0 < -180 || lng0 > 180 {
		return nil, ErrInvalidCoordinates
	}
	return &Projector{
		lat0:         lat0,
		lng0:         lng0,
		metersPerLat: EarthRadiusM * degToRad,
		metersPerLng: EarthRadiusM * math.Cos(lat0*degToRad) * degToRad,
	}, nil
}

// Project converts latitude/longitude in degrees to local (x, y) meters.
func (p *Projector) Project(lat, lng float64) (x, y float64) {
	x = (lng - p.lng0) * p.metersPerLng
	y = (lat - p.lat0) * p.metersPerLat
	return x, y
}

// Unproject converts local (x, y) meters back to latitude/longitude degrees
// for result interpretation.
func (p *Projector) Unproject(x, y float64) (lat, lng float64) {
	lng = p.lng0 + x/p.metersPerLng
	lat = p.lat0 + y/p.metersPerLat
	return lat, lng
}

// ProjectPoint converts a GeoPoint into the local frame. Missing elevation
// projects to z=0; the terrain mesher decides whether that is usable.
func (p *Projector) ProjectPoint(gp core.GeoPoint) core.Position3D {
	x, y := p.Project(gp.Latitude, gp.Longitude)
	var z float64
	if gp.Elevation != nil {
		z = *gp.Elevation
	}
	return core.Position3D{X: x, Y: y, Z: z}
}

// Origin returns the site center the projector was constructed with.
func (p *Projector) Origin() (lat0, lng0 float64) {
	return p.lat0, p.lng0
}

// FromWebMercator converts EPSG:3857 easting/northing into the local
// frame, going through geographic coordinates so the tangent plane stays
// the single authority. Elevation tiles and DEM exports commonly ship in
// web-mercator; their loaders call this instead of reprojecting
// themselves.
func (p *Projector) FromWebMercator(easting, northing float64) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(3857, 4326)
	lng, lat, _ := f(easting, northing, 0)
	return p.Project(lat, lng)
}
