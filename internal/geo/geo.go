// Package geo shapes flat rows into GeoJSON point features for the map
// surface. Rendering stays with the consumer; this is pure data shaping.
package geo

import "github.com/crimson-sun/fieldview/internal/model"

// Geometry mirrors the GeoJSON geometry object map consumers expect.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // lon, lat per GeoJSON
}

// Feature is one GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is the GeoJSON envelope.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Points builds a FeatureCollection from the rows whose latitude and
// longitude are both non-null. Rows without a usable position are skipped,
// never an error; an all-skipped input produces an empty collection.
// labelField, when present on a row, is carried into feature properties.
func Points(rows []model.FlatRow, latColumn, lonColumn, labelField string) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	for _, row := range rows {
		lat, ok := row.Get(latColumn).AsNumber()
		if !ok {
			continue
		}
		lon, ok := row.Get(lonColumn).AsNumber()
		if !ok {
			continue
		}

		props := map[string]any{}
		if label := row.Get(labelField); !label.IsNull() {
			props[labelField] = label.Display()
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: [2]float64{lon, lat}},
			Properties: props,
		})
	}
	return fc
}

// Center returns the mean position of the collection's points and whether
// the collection has any. Map consumers use it as the initial viewport.
func Center(fc FeatureCollection) (lat, lon float64, ok bool) {
	if len(fc.Features) == 0 {
		return 0, 0, false
	}
	for _, f := range fc.Features {
		lon += f.Geometry.Coordinates[0]
		lat += f.Geometry.Coordinates[1]
	}
	n := float64(len(fc.Features))
	return lat / n, lon / n, true
}
