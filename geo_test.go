package tacmap

import (
	"math"
	"testing"
)

func TestGeoBoundsContains(t *testing.T) {
	b := GeoBounds{South: 50, West: 6, North: 51, East: 7}

	tests := []struct {
		name string
		p    GeoPoint
		want bool
	}{
		{"center", GeoPoint{Lat: 50.5, Lon: 6.5}, true},
		{"south edge", GeoPoint{Lat: 50, Lon: 6.5}, true},
		{"north of bounds", GeoPoint{Lat: 51.1, Lon: 6.5}, false},
		{"west of bounds", GeoPoint{Lat: 50.5, Lon: 5.9}, false},
		{"corner", GeoPoint{Lat: 51, Lon: 7}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestGeoBoundsPad(t *testing.T) {
	b := GeoBounds{South: 50, West: 6, North: 51, East: 7}
	p := b.Pad(0.1)
	if !approxEqual(p.South, 49.9, epsilon) || !approxEqual(p.West, 5.9, epsilon) ||
		!approxEqual(p.North, 51.1, epsilon) || !approxEqual(p.East, 7.1, epsilon) {
		t.Errorf("Pad(0.1) = %+v", p)
	}
}

func TestMercatorCenterProjectsToScreenCenter(t *testing.T) {
	center := GeoPoint{Lat: 48.8566, Lon: 2.3522}
	m := NewMercator(center, 12, 800, 600)

	s := m.ToScreen(center)
	if !approxEqual(s.X, 400, 1e-3) || !approxEqual(s.Y, 300, 1e-3) {
		t.Errorf("center projected to (%f, %f), want (400, 300)", s.X, s.Y)
	}
}

func TestMercatorRoundTrip(t *testing.T) {
	m := NewMercator(GeoPoint{Lat: 48.8566, Lon: 2.3522}, 14, 800, 600)

	tests := []struct {
		name string
		p    GeoPoint
	}{
		{"center", GeoPoint{Lat: 48.8566, Lon: 2.3522}},
		{"north-east", GeoPoint{Lat: 48.87, Lon: 2.37}},
		{"south-west", GeoPoint{Lat: 48.84, Lon: 2.33}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.FromScreen(m.ToScreen(tt.p))
			if !approxEqual(got.Lat, tt.p.Lat, 1e-6) || !approxEqual(got.Lon, tt.p.Lon, 1e-6) {
				t.Errorf("round trip %+v -> %+v", tt.p, got)
			}
		})
	}
}

func TestMercatorScreenOrientation(t *testing.T) {
	center := GeoPoint{Lat: 48.8566, Lon: 2.3522}
	m := NewMercator(center, 12, 800, 600)

	north := m.ToScreen(GeoPoint{Lat: center.Lat + 0.01, Lon: center.Lon})
	east := m.ToScreen(GeoPoint{Lat: center.Lat, Lon: center.Lon + 0.01})

	if north.Y >= 300 {
		t.Errorf("north of center should be above screen center, got Y=%f", north.Y)
	}
	if east.X <= 400 {
		t.Errorf("east of center should be right of screen center, got X=%f", east.X)
	}
}

func TestMercatorZoomDoublesScale(t *testing.T) {
	center := GeoPoint{Lat: 48.8566, Lon: 2.3522}
	p := GeoPoint{Lat: 48.8566, Lon: 2.36}

	m := NewMercator(center, 12, 800, 600)
	d1 := m.ToScreen(p).Dist(ScreenPoint{X: 400, Y: 300})
	m.SetZoom(13)
	d2 := m.ToScreen(p).Dist(ScreenPoint{X: 400, Y: 300})

	if !approxEqual(d2/d1, 2, 1e-6) {
		t.Errorf("zoom +1 scaled distances by %f, want 2", d2/d1)
	}
}

func TestMercatorMetersToPixels(t *testing.T) {
	// At the equator and zoom 0, the whole circumference spans 256 px.
	m := NewMercator(GeoPoint{}, 0, 800, 600)
	got := m.MetersToPixels(earthCircumference)
	if !approxEqual(got, 256, 1e-6) {
		t.Errorf("MetersToPixels(C) at zoom 0 = %f, want 256", got)
	}
}

func TestGroundResolutionMatchesMercatorScale(t *testing.T) {
	center := GeoPoint{Lat: 48.8566, Lon: 2.3522}
	m := NewMercator(center, 14, 800, 600)

	// The finite-difference helper should agree with the analytic scale to
	// well under a percent at city spans.
	want := m.MetersToPixels(500)
	got := GroundResolution(m, center, 500)
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("GroundResolution = %f, MetersToPixels = %f", got, want)
	}
}

func TestGroundResolutionAtPole(t *testing.T) {
	m := NewMercator(GeoPoint{Lat: 48.8566, Lon: 2.3522}, 14, 800, 600)
	if got := GroundResolution(m, GeoPoint{Lat: 90, Lon: 0}, 100); got != 0 {
		t.Errorf("GroundResolution at pole = %f, want 0", got)
	}
}
