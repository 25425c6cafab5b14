package tacmap

import "time"

// CullConfig tunes viewport bounds computation.
type CullConfig struct {
	// MarginDeg pads the visible bounds so entities anchored just off
	// screen, whose glyphs may still overlap the viewport, stay visible.
	MarginDeg float64
	// RecomputeInterval throttles bounds recomputation.
	RecomputeInterval time.Duration
}

// DefaultCullConfig returns the standard margin and throttle.
func DefaultCullConfig() CullConfig {
	return CullConfig{
		MarginDeg:         0.1,
		RecomputeInterval: 200 * time.Millisecond,
	}
}

// ViewportCuller maintains a cached, margin-padded visible-region rectangle
// and filters the entity set down to what is worth hit-testing and drawing.
type ViewportCuller struct {
	cfg   CullConfig
	clock Clock

	bounds      GeoBounds
	valid       bool
	lastCompute time.Time
}

// NewViewportCuller creates a culler using the given clock for throttling.
func NewViewportCuller(cfg CullConfig, clock Clock) *ViewportCuller {
	if cfg.MarginDeg == 0 {
		cfg.MarginDeg = DefaultCullConfig().MarginDeg
	}
	if cfg.RecomputeInterval == 0 {
		cfg.RecomputeInterval = DefaultCullConfig().RecomputeInterval
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ViewportCuller{cfg: cfg, clock: clock}
}

// Invalidate discards the cached bounds. Call whenever the projection
// changes (pan, zoom, rotate); the next VisibleBounds query recomputes
// regardless of the throttle.
func (c *ViewportCuller) Invalidate() {
	c.valid = false
}

// VisibleBounds returns the padded geographic bounds of the viewport.
// The result is cached and recomputed at most once per RecomputeInterval
// unless invalidated.
func (c *ViewportCuller) VisibleBounds(proj Projection) GeoBounds {
	now := c.clock.Now()
	if c.valid && now.Sub(c.lastCompute) < c.cfg.RecomputeInterval {
		return c.bounds
	}

	w, h := proj.ScreenSize()

	// Back-project the four screen corners; under rotation no single
	// corner pair is sufficient.
	corners := [4]GeoPoint{
		proj.FromScreen(ScreenPoint{X: 0, Y: 0}),
		proj.FromScreen(ScreenPoint{X: w, Y: 0}),
		proj.FromScreen(ScreenPoint{X: w, Y: h}),
		proj.FromScreen(ScreenPoint{X: 0, Y: h}),
	}

	b := GeoBounds{
		South: corners[0].Lat, North: corners[0].Lat,
		West: corners[0].Lon, East: corners[0].Lon,
	}
	for _, p := range corners[1:] {
		if p.Lat < b.South {
			b.South = p.Lat
		}
		if p.Lat > b.North {
			b.North = p.Lat
		}
		if p.Lon < b.West {
			b.West = p.Lon
		}
		if p.Lon > b.East {
			b.East = p.Lon
		}
	}

	c.bounds = b.Pad(c.cfg.MarginDeg)
	c.valid = true
	c.lastCompute = now
	return c.bounds
}

// FilterVisible appends the entities whose anchor lies inside bounds to buf
// and returns it. Anchor-only culling is an accepted approximation: a large
// line or polygon whose first point is off screen is culled even if part of
// its geometry is visible. The margin absorbs most of that in practice.
func (c *ViewportCuller) FilterVisible(entities []Entity, bounds GeoBounds, buf []Entity) []Entity {
	for _, e := range entities {
		if bounds.Contains(e.Anchor()) {
			buf = append(buf, e)
		}
	}
	return buf
}
