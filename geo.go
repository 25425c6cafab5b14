package tacmap

import (
	"math"

	"github.com/wroge/wgs84"
)

// GeoPoint is a WGS84 coordinate in degrees.
type GeoPoint struct {
	Lat, Lon float64
}

// GeoBounds is a geographic bounding rectangle in degrees.
// West may exceed East when the bounds cross the antimeridian; this overlay
// does not handle that case and callers near ±180° get approximate culling.
type GeoBounds struct {
	South, West, North, East float64
}

// Contains reports whether the point lies inside the bounds (edges inclusive).
func (b GeoBounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.South && p.Lat <= b.North &&
		p.Lon >= b.West && p.Lon <= b.East
}

// Pad returns the bounds expanded by margin degrees in every direction.
func (b GeoBounds) Pad(margin float64) GeoBounds {
	return GeoBounds{
		South: b.South - margin,
		West:  b.West - margin,
		North: b.North + margin,
		East:  b.East + margin,
	}
}

// Projection converts between geographic and screen coordinates. The map
// engine owns pan/zoom state; the overlay only ever queries it. Implementations
// must be cheap to call; hit-testing and culling project every visible entity.
type Projection interface {
	ToScreen(p GeoPoint) ScreenPoint
	FromScreen(p ScreenPoint) GeoPoint
	// Zoom returns the web-map zoom level (0 = whole world in 256px).
	Zoom() float64
	// ScreenSize returns the viewport dimensions in pixels.
	ScreenSize() (w, h float64)
}

// earthCircumference is the WGS84 equatorial circumference in meters,
// matching the EPSG:3857 plane extent.
const earthCircumference = 40075016.686

// Mercator is a Projection over the EPSG:3857 (Web Mercator) plane with a
// center-point-plus-zoom camera, the usual slippy-map model. Geodetic
// conversion goes through wgs84 rather than hand-rolled series expansions.
type Mercator struct {
	center   GeoPoint
	zoom     float64
	w, h     float64
	cx, cy   float64 // center in 3857 meters
	forward  func(a, b, c float64) (x, y, z float64)
	backward func(a, b, c float64) (x, y, z float64)
}

// NewMercator creates a projection centered on the given point.
func NewMercator(center GeoPoint, zoom, screenW, screenH float64) *Mercator {
	epsg := wgs84.EPSG()
	m := &Mercator{
		zoom:     zoom,
		w:        screenW,
		h:        screenH,
		forward:  epsg.Transform(4326, 3857),
		backward: epsg.Transform(3857, 4326),
	}
	m.SetCenter(center)
	return m
}

// SetCenter moves the camera. The caller is responsible for notifying the
// engine via OnProjectionChanged.
func (m *Mercator) SetCenter(p GeoPoint) {
	m.center = p
	m.cx, m.cy, _ = m.forward(p.Lon, p.Lat, 0)
}

// Center returns the camera center.
func (m *Mercator) Center() GeoPoint { return m.center }

// SetZoom sets the web-map zoom level.
func (m *Mercator) SetZoom(zoom float64) { m.zoom = zoom }

// Zoom returns the web-map zoom level.
func (m *Mercator) Zoom() float64 { return m.zoom }

// SetScreenSize resizes the viewport.
func (m *Mercator) SetScreenSize(w, h float64) {
	m.w = w
	m.h = h
}

// ScreenSize returns the viewport dimensions in pixels.
func (m *Mercator) ScreenSize() (w, h float64) { return m.w, m.h }

// pixelsPerMeter is the map scale at the current zoom: the 3857 plane spans
// 256 * 2^zoom pixels edge to edge.
func (m *Mercator) pixelsPerMeter() float64 {
	return 256 * math.Exp2(m.zoom) / earthCircumference
}

// ToScreen converts a geographic point to screen pixels.
func (m *Mercator) ToScreen(p GeoPoint) ScreenPoint {
	x, y, _ := m.forward(p.Lon, p.Lat, 0)
	ppm := m.pixelsPerMeter()
	return ScreenPoint{
		X: m.w/2 + (x-m.cx)*ppm,
		Y: m.h/2 - (y-m.cy)*ppm, // screen Y grows southward
	}
}

// FromScreen converts screen pixels back to a geographic point.
func (m *Mercator) FromScreen(p ScreenPoint) GeoPoint {
	ppm := m.pixelsPerMeter()
	x := m.cx + (p.X-m.w/2)/ppm
	y := m.cy - (p.Y-m.h/2)/ppm
	lon, lat, _ := m.backward(x, y, 0)
	return GeoPoint{Lat: lat, Lon: lon}
}

// MetersToPixels converts a ground distance at the projection center to
// screen pixels. Used to size Area circles.
func (m *Mercator) MetersToPixels(meters float64) float64 {
	// 3857 stretches distances by 1/cos(lat) away from the equator; the
	// forward transform already applied that to coordinates, so apply the
	// same factor to ground distances for visual consistency.
	scale := 1.0
	if c := math.Cos(m.center.Lat * math.Pi / 180); c > 1e-9 {
		scale = 1 / c
	}
	return meters * scale * m.pixelsPerMeter()
}

// GroundResolution converts a ground distance in meters at the given latitude
// to screen pixels under any Projection, by projecting a short east-west
// offset. Works for projections that don't expose their scale directly.
func GroundResolution(proj Projection, at GeoPoint, meters float64) float64 {
	// 1 degree of longitude at latitude φ spans cos(φ) * C / 360 meters.
	metersPerDegree := math.Cos(at.Lat*math.Pi/180) * earthCircumference / 360
	if metersPerDegree < 1e-9 {
		return 0
	}
	degrees := meters / metersPerDegree
	a := proj.ToScreen(at)
	b := proj.ToScreen(GeoPoint{Lat: at.Lat, Lon: at.Lon + degrees})
	return a.Dist(b)
}
