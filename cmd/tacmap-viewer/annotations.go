package main

import (
	"fmt"
	"os"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/medentem/tacmap"
)

// loadAnnotations reads a GeoJSON feature collection and converts it into
// overlay entities. Points become POIs (or areas when a radius property is
// present), line strings become lines, polygons become polygons. Unsupported
// geometry types are skipped.
func loadAnnotations(path string) ([]tacmap.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var entities []tacmap.Entity
	for _, f := range fc.Features {
		switch {
		case f.Geometry.IsPoint():
			entities = append(entities, pointEntity(f))
		case f.Geometry.IsLineString():
			line := tacmap.NewLine(toGeoPoints(f.Geometry.LineString), lineStyle(f), featureColor(f))
			if arrow, _ := f.PropertyString("arrow"); arrow == "end" {
				line.Arrow = tacmap.ArrowEnd
			}
			line.Expiration = featureExpiration(f)
			entities = append(entities, line)
		case f.Geometry.IsPolygon():
			if len(f.Geometry.Polygon) == 0 {
				continue
			}
			// Outer ring only; annotation polygons have no holes.
			poly := tacmap.NewPolygon(toGeoPoints(f.Geometry.Polygon[0]), featureColor(f))
			poly.Label, _ = f.PropertyString("label")
			poly.Expiration = featureExpiration(f)
			entities = append(entities, poly)
		}
	}
	return entities, nil
}

func pointEntity(f *geojson.Feature) tacmap.Entity {
	pos := tacmap.GeoPoint{Lat: f.Geometry.Point[1], Lon: f.Geometry.Point[0]}

	if radius, err := f.PropertyFloat64("radiusMeters"); err == nil && radius > 0 {
		area := tacmap.NewArea(pos, radius, featureColor(f))
		area.Expiration = featureExpiration(f)
		return area
	}

	poi := tacmap.NewPointOfInterest(pos, markerShape(f), featureColor(f))
	poi.Label, _ = f.PropertyString("label")
	poi.Expiration = featureExpiration(f)
	return poi
}

func toGeoPoints(coords [][]float64) []tacmap.GeoPoint {
	pts := make([]tacmap.GeoPoint, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		pts = append(pts, tacmap.GeoPoint{Lat: c[1], Lon: c[0]})
	}
	return pts
}

func markerShape(f *geojson.Feature) tacmap.MarkerShape {
	shape, _ := f.PropertyString("shape")
	switch shape {
	case "square":
		return tacmap.ShapeSquare
	case "triangle":
		return tacmap.ShapeTriangle
	case "exclamation":
		return tacmap.ShapeExclamation
	default:
		return tacmap.ShapeCircle
	}
}

func lineStyle(f *geojson.Feature) tacmap.LineStyle {
	if style, _ := f.PropertyString("style"); style == "dashed" {
		return tacmap.LineDashed
	}
	return tacmap.LineSolid
}

var namedColors = map[string]tacmap.Color{
	"red":    {R: 0.9, G: 0.3, B: 0.3, A: 1},
	"orange": {R: 1, G: 0.6, B: 0.2, A: 1},
	"yellow": {R: 0.95, G: 0.9, B: 0.3, A: 1},
	"green":  {R: 0.3, G: 0.9, B: 0.5, A: 1},
	"blue":   {R: 0.3, G: 0.7, B: 0.9, A: 1},
	"purple": {R: 0.8, G: 0.3, B: 0.9, A: 1},
}

func featureColor(f *geojson.Feature) tacmap.Color {
	name, _ := f.PropertyString("color")
	if c, known := namedColors[name]; known {
		return c
	}
	return tacmap.ColorWhite
}

// featureExpiration reads an optional expiresInSeconds property, relative to
// load time.
func featureExpiration(f *geojson.Feature) time.Time {
	secs, err := f.PropertyFloat64("expiresInSeconds")
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(secs * float64(time.Second)))
}
