package massing

import (
	"encoding/json"
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliosite/engine/internal/geo"
)

const (
	siteLat = 52.52
	siteLng = 13.405
)

func parseFeatures(t *testing.T, raw string) geom.GeoJSONFeatureCollection {
	t.Helper()
	var fc geom.GeoJSONFeatureCollection
	require.NoError(t, json.Unmarshal([]byte(raw), &fc))
	return fc
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	projector, err := geo.NewProjector(siteLat, siteLng)
	require.NoError(t, err)
	return NewExtractor(projector)
}

// squareAt builds a small closed square footprint around the site origin.
func squareFeature(props string) string {
	return `{
		"type": "Feature",
		"properties": ` + props + `,
		"geometry": {
			"type": "Polygon",
			"coordinates": [[
				[13.4050, 52.5200],
				[13.4053, 52.5200],
				[13.4053, 52.5202],
				[13.4050, 52.5202],
				[13.4050, 52.5200]
			]]
		}
	}`
}

func TestExtract_ExplicitHeight(t *testing.T) {
	fc := parseFeatures(t, `{"type":"FeatureCollection","features":[`+
		squareFeature(`{"id":"hall","height":24.5}`)+`]}`)

	massings, report := newTestExtractor(t).Extract(fc)
	require.Len(t, massings, 1)

	m := massings[0]
	assert.Equal(t, "hall", m.ID)
	assert.Equal(t, 24.5, m.HeightMeters)
	assert.Len(t, m.Footprint, 4, "closing vertex should be dropped")
	assert.Zero(t, report.DefaultedHeight)
	assert.Equal(t, 1, report.Total)
}

func TestExtract_HeightFromStringTag(t *testing.T) {
	fc := parseFeatures(t, `{"type":"FeatureCollection","features":[`+
		squareFeature(`{"height":"18"}`)+`]}`)

	massings, _ := newTestExtractor(t).Extract(fc)
	require.Len(t, massings, 1)
	assert.Equal(t, 18.0, massings[0].HeightMeters)
}

func TestExtract_HeightFromLevels(t *testing.T) {
	fc := parseFeatures(t, `{"type":"FeatureCollection","features":[`+
		squareFeature(`{"building:levels":4}`)+`]}`)

	massings, report := newTestExtractor(t).Extract(fc)
	require.Len(t, massings, 1)
	assert.InDelta(t, 14.0, massings[0].HeightMeters, 1e-9)
	assert.Zero(t, report.DefaultedHeight)
}

func TestExtract_DefaultHeight(t *testing.T) {
	fc := parseFeatures(t, `{"type":"FeatureCollection","features":[`+
		squareFeature(`{}`)+`]}`)

	massings, report := newTestExtractor(t).Extract(fc)
	require.Len(t, massings, 1)
	assert.Equal(t, float64(DefaultHeightM), massings[0].HeightMeters)
	assert.Equal(t, 1, report.DefaultedHeight)
}

func TestExtract_FlagsTallBuildings(t *testing.T) {
	fc := parseFeatures(t, `{"type":"FeatureCollection","features":[`+
		squareFeature(`{"id":"spire","height":140}`)+`,`+
		squareFeature(`{"id":"shed","height":4}`)+`]}`)

	_, report := newTestExtractor(t).Extract(fc)
	assert.Equal(t, []string{"spire"}, report.VerifyIDs)
	assert.Equal(t, 140.0, report.MaxHeightM)
	assert.InDelta(t, 72.0, report.AverageHeightM, 1e-9)
}

func TestExtract_SkipsNonPolygonFeatures(t *testing.T) {
	fc := parseFeatures(t, `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"id":"road"},
		 "geometry":{"type":"LineString","coordinates":[[13.405,52.52],[13.406,52.52]]}}
	]}`)

	massings, report := newTestExtractor(t).Extract(fc)
	assert.Empty(t, massings)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "massing", report.Warnings[0].Stage)
	assert.Contains(t, report.Warnings[0].Message, "unsupported geometry")
}

func TestExtract_MultiPolygonSplitsPerPolygon(t *testing.T) {
	fc := parseFeatures(t, `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"id":"campus","height":12},
		 "geometry":{"type":"MultiPolygon","coordinates":[
			[[[13.4050,52.5200],[13.4052,52.5200],[13.4052,52.5201],[13.4050,52.5200]]],
			[[[13.4060,52.5200],[13.4062,52.5200],[13.4062,52.5201],[13.4060,52.5200]]]
		 ]}}
	]}`)

	massings, report := newTestExtractor(t).Extract(fc)
	require.Len(t, massings, 2)
	assert.Equal(t, "campus/0", massings[0].ID)
	assert.Equal(t, "campus/1", massings[1].ID)
	assert.Equal(t, 2, report.Total)
}

func TestExtract_FootprintInLocalMeters(t *testing.T) {
	fc := parseFeatures(t, `{"type":"FeatureCollection","features":[`+
		squareFeature(`{"height":10}`)+`]}`)

	massings, _ := newTestExtractor(t).Extract(fc)
	require.Len(t, massings, 1)

	fp := massings[0].Footprint
	// First vertex sits on the site origin; the footprint spans roughly
	// 20 m east-west and 22 m north-south.
	assert.InDelta(t, 0, fp[0].X, 0.1)
	assert.InDelta(t, 0, fp[0].Y, 0.1)
	assert.InDelta(t, 20.3, fp[1].X, 1.0)
	assert.InDelta(t, 22.3, fp[2].Y, 1.0)
}

func TestExtract_AnonymousFeatureGetsIndexID(t *testing.T) {
	fc := parseFeatures(t, `{"type":"FeatureCollection","features":[`+
		squareFeature(`{}`)+`]}`)

	massings, _ := newTestExtractor(t).Extract(fc)
	require.Len(t, massings, 1)
	assert.Equal(t, "building-0", massings[0].ID)
}
