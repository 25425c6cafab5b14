package tacmap

import "math"

// HitConfig tunes hit-testing tolerances and candidate ordering.
type HitConfig struct {
	// Priority is the kind order tried at a touch point. The first kind
	// with a match wins; within a kind the first entity in list order wins.
	// This encodes a deliberate UX precedence: your own dot is easiest to
	// grab, then peers, then geometry.
	Priority []EntityKind
	// PointTolerancePx is the hit radius for point-like entities.
	PointTolerancePx float64
	// LineTolerancePx is the maximum perpendicular distance to a segment.
	LineTolerancePx float64
}

// DefaultHitConfig returns the standard tolerances and priority order.
func DefaultHitConfig() HitConfig {
	return HitConfig{
		Priority: []EntityKind{
			KindDeviceDot, KindPeerDot, KindLine,
			KindPointOfInterest, KindArea, KindPolygon,
		},
		PointTolerancePx: 40,
		LineTolerancePx:  30,
	}
}

// HitTester finds the entity under a touch point. Pure query: no state is
// mutated and a miss is a normal result, not an error.
type HitTester struct {
	cfg HitConfig
}

// NewHitTester creates a HitTester with the given config. Zero-value fields
// fall back to defaults.
func NewHitTester(cfg HitConfig) *HitTester {
	def := DefaultHitConfig()
	if len(cfg.Priority) == 0 {
		cfg.Priority = def.Priority
	}
	if cfg.PointTolerancePx <= 0 {
		cfg.PointTolerancePx = def.PointTolerancePx
	}
	if cfg.LineTolerancePx <= 0 {
		cfg.LineTolerancePx = def.LineTolerancePx
	}
	return &HitTester{cfg: cfg}
}

// FindAt returns the highest-priority entity within tolerance of p, or
// ok=false when nothing matches. Entities with malformed geometry never
// match. Ties within a kind go to the first entity in list order; under
// dense overlap that is order-dependent and accepted.
func (h *HitTester) FindAt(proj Projection, p ScreenPoint, entities []Entity) (EntityRef, bool) {
	for _, kind := range h.cfg.Priority {
		for _, e := range entities {
			if e.Kind() != kind {
				continue
			}
			if h.hits(proj, p, e) {
				return e.Ref(), true
			}
		}
	}
	return EntityRef{}, false
}

// hits tests a single entity against the touch point.
func (h *HitTester) hits(proj Projection, p ScreenPoint, e Entity) bool {
	switch e.Kind() {
	case KindDeviceDot, KindPeerDot, KindPointOfInterest:
		return proj.ToScreen(e.Anchor()).Dist(p) <= h.cfg.PointTolerancePx

	case KindLine:
		line := e.(*Line)
		if len(line.Points) < 2 {
			// A 1-point line has no segments; tolerated but not hit-testable.
			return false
		}
		prev := proj.ToScreen(line.Points[0])
		for _, gp := range line.Points[1:] {
			cur := proj.ToScreen(gp)
			if distToSegment(p, prev, cur) <= h.cfg.LineTolerancePx {
				return true
			}
			prev = cur
		}
		return false

	case KindArea:
		// The whole disc is tappable, plus the point tolerance at the rim.
		area := e.(*Area)
		center := proj.ToScreen(area.Center)
		radiusPx := GroundResolution(proj, area.Center, area.RadiusMeters)
		return center.Dist(p) <= radiusPx+h.cfg.PointTolerancePx

	case KindPolygon:
		poly := e.(*Polygon)
		if len(poly.Points) < 3 {
			return false
		}
		pts := make([]ScreenPoint, len(poly.Points))
		for i, gp := range poly.Points {
			pts[i] = proj.ToScreen(gp)
		}
		return PointInPolygon(p, pts)

	default:
		return false
	}
}

// distToSegment returns the distance from p to the segment ab: the
// perpendicular distance when the projection of p falls inside the segment,
// otherwise the distance to the nearer endpoint. The parametric projection
// t is clamped to [0, 1] so the infinite line never matches.
func distToSegment(p, a, b ScreenPoint) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Dist(a) // degenerate segment
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := ScreenPoint{X: a.X + t*dx, Y: a.Y + t*dy}
	return p.Dist(closest)
}

// PointInPolygon reports whether p lies inside the polygon using the
// even-odd ray-casting rule. Handles concave polygons, which the free-form
// lasso path usually is. Fewer than 3 vertices contains nothing.
func PointInPolygon(p ScreenPoint, poly []ScreenPoint) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		yi, yj := poly[i].Y, poly[j].Y
		if (yi > p.Y) != (yj > p.Y) {
			xCross := poly[i].X + (p.Y-yi)/(yj-yi)*(poly[j].X-poly[i].X)
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
