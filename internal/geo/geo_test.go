package geo

import (
	"encoding/json"
	"testing"

	"github.com/crimson-sun/fieldview/internal/model"
)

func row(cells map[string]model.Value) model.FlatRow {
	return model.FlatRow{Cells: cells}
}

func TestPoints(t *testing.T) {
	rows := []model.FlatRow{
		row(map[string]model.Value{
			"Latitude":   model.Number(-3.3614),
			"Longitude":  model.Number(29.3599),
			"Name_Agent": model.String("Alice"),
		}),
		// Missing longitude: skipped, not an error.
		row(map[string]model.Value{"Latitude": model.Number(-3.4)}),
		// Null latitude: skipped.
		row(map[string]model.Value{"Latitude": model.Null, "Longitude": model.Number(29.9)}),
	}

	fc := Points(rows, "Latitude", "Longitude", "Name_Agent")
	if fc.Type != "FeatureCollection" {
		t.Fatalf("unexpected type %q", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}

	f := fc.Features[0]
	if f.Geometry.Type != "Point" {
		t.Errorf("geometry type = %q", f.Geometry.Type)
	}
	// GeoJSON order is lon, lat.
	if f.Geometry.Coordinates != [2]float64{29.3599, -3.3614} {
		t.Errorf("coordinates = %v", f.Geometry.Coordinates)
	}
	if f.Properties["Name_Agent"] != "Alice" {
		t.Errorf("properties = %v", f.Properties)
	}
}

func TestPoints_EmptyCollectionMarshals(t *testing.T) {
	fc := Points(nil, "Latitude", "Longitude", "Name_Agent")
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"type":"FeatureCollection","features":[]}` {
		t.Fatalf("empty collection must serialize with an empty array, got %s", data)
	}
}

func TestCenter(t *testing.T) {
	rows := []model.FlatRow{
		row(map[string]model.Value{"Latitude": model.Number(-3.0), "Longitude": model.Number(29.0)}),
		row(map[string]model.Value{"Latitude": model.Number(-4.0), "Longitude": model.Number(30.0)}),
	}
	fc := Points(rows, "Latitude", "Longitude", "")

	lat, lon, ok := Center(fc)
	if !ok {
		t.Fatal("expected a center")
	}
	if lat != -3.5 || lon != 29.5 {
		t.Fatalf("center = %v, %v", lat, lon)
	}

	if _, _, ok := Center(FeatureCollection{}); ok {
		t.Fatal("empty collection has no center")
	}
}
