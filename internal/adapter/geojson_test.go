package adapter

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumry/internal/errs"
	"sumry/internal/table"
)

const citiesGeoJSON = `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::4326"}},
  "features": [
    {"type": "Feature", "properties": {"zeta": "a", "pop": 10, "area": 1.5, "capital": true},
     "geometry": {"type": "Point", "coordinates": [1, 2]}},
    {"type": "Feature", "properties": {"zeta": "b", "pop": 20, "area": 2, "capital": false, "founded": "1850-01-01"},
     "geometry": {"type": "Point", "coordinates": [3, 4]}},
    {"type": "Feature", "properties": null, "geometry": null}
  ]
}`

func TestLoadGeoJSON(t *testing.T) {
	tbl, err := LoadGeoJSON(writeFile(t, "cities.geojson", citiesGeoJSON))
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.Rows)
	assert.Equal(t, "EPSG:4326", tbl.CRS)

	var names []string
	for _, c := range tbl.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"zeta", "pop", "area", "capital", "founded", "geometry"}, names)

	assert.Equal(t, table.KindText, tbl.Column("zeta").Kind)
	assert.Equal(t, table.KindInteger, tbl.Column("pop").Kind)
	assert.Equal(t, table.KindFloat, tbl.Column("area").Kind)
	assert.Equal(t, table.KindBoolean, tbl.Column("capital").Kind)
	assert.Equal(t, table.KindDatetime, tbl.Column("founded").Kind)

	geom := tbl.GeometryColumn()
	require.NotNil(t, geom)
	assert.Equal(t, orb.Point{1, 2}, geom.Values[0].Geom)
	assert.True(t, geom.Values[2].Null)
	assert.True(t, tbl.Column("pop").Values[2].Null)
}

func TestLoadGeoJSONSingleFeature(t *testing.T) {
	doc := `{"type": "Feature", "properties": {"name": "x"},
	  "geometry": {"type": "LineString", "coordinates": [[0, 0], [3, 4]]}}`

	tbl, err := LoadGeoJSON(writeFile(t, "one.json", doc))
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Rows)
	assert.Empty(t, tbl.CRS)
	assert.Equal(t, "LINESTRING(0 0,3 4)", tbl.GeometryColumn().Values[0].String())
}

func TestLoadGeoJSONPropertyNamedGeometry(t *testing.T) {
	doc := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {"geometry": "shadow"}, "geometry": {"type": "Point", "coordinates": [0, 0]}}]}`

	tbl, err := LoadGeoJSON(writeFile(t, "shadow.geojson", doc))
	require.NoError(t, err)
	require.Len(t, tbl.Columns, 2)
	assert.Equal(t, "geometry", tbl.Columns[0].Name)
	assert.Equal(t, "geometry.1", tbl.Columns[1].Name)
	assert.Equal(t, table.KindGeometry, tbl.Columns[1].Kind)
}

func TestLoadGeoJSONMixedProperties(t *testing.T) {
	doc := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {"v": 1, "tags": ["a"]}, "geometry": null},
	  {"type": "Feature", "properties": {"v": "two", "tags": null}, "geometry": null}]}`

	tbl, err := LoadGeoJSON(writeFile(t, "mixed.geojson", doc))
	require.NoError(t, err)
	assert.Equal(t, table.KindText, tbl.Column("v").Kind)
	assert.Equal(t, "1", tbl.Column("v").Values[0].String())
	assert.Equal(t, `["a"]`, tbl.Column("tags").Values[0].String())
}

func TestLoadGeoJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid json", `{"type": "FeatureCollection", "features": [`},
		{"bare geometry", `{"type": "Point", "coordinates": [0, 0]}`},
		{"bad geometry", `{"type": "Feature", "properties": {}, "geometry": {"type": "Blob"}}`},
		{"properties not object", `{"type": "Feature", "properties": [1], "geometry": null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGeoJSON(writeFile(t, "bad.geojson", tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ParseError))
		})
	}
}

func TestNormalizeCRS(t *testing.T) {
	tests := map[string]string{
		"urn:ogc:def:crs:OGC:1.3:CRS84": "OGC:CRS84",
		"urn:ogc:def:crs:EPSG::3857":     "EPSG:3857",
		"EPSG:4326":                      "EPSG:4326",
		"custom":                         "custom",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeCRS(in), in)
	}
}
