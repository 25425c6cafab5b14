package tacmap

import "time"

// DrawOp selects what a DrawCommand renders.
type DrawOp uint8

const (
	OpMarker       DrawOp = iota // POI glyph at Screen
	OpPolyline                   // line annotation along Points
	OpPolygonFill                // polygon annotation over Points
	OpAreaCircle                 // circle of RadiusPx at Screen
	OpPeerDot                    // peer position dot
	OpDeviceDot                  // own position dot
	OpClusterBadge               // cluster marker with member Count
	OpTimerGlyph                 // countdown ring + second hand
	OpStatusGlyph                // delivery-status indicator
	OpLassoPath                  // in-progress lasso feedback along Points
)

// DrawCommand is one renderer-agnostic drawing instruction. The overlay
// produces these; an external renderer (the viewer, in this repo) turns
// them into actual draw calls. Field validity depends on Op.
type DrawCommand struct {
	Op     DrawOp
	Entity EntityRef
	Screen ScreenPoint
	Points []ScreenPoint

	Color    Color
	Alpha    float64
	RadiusPx float64
	Scale    float64 // ring scale for status glyphs
	Label    string
	Count    int // cluster member count
	Stale    bool

	Shape MarkerShape
	Style LineStyle
	Arrow ArrowStyle

	// Timer glyph fields.
	SweepAngle  float64
	SecondsLeft int

	// Status glyph fields.
	Status     DeliveryStatus
	OrbitPhase float64
}

// RenderConfig tunes pipeline output.
type RenderConfig struct {
	// PeerMaxAge is how old a peer update may be before the dot renders
	// as stale.
	PeerMaxAge time.Duration
}

// DefaultRenderConfig returns the standard pipeline settings.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{PeerMaxAge: 30 * time.Second}
}

// RenderPipeline turns the culled, clustered entity set plus arbiter and
// animator state into a flat draw-command list. It holds no logic worth
// optimizing; it is driven entirely by the components upstream.
type RenderPipeline struct {
	cfg RenderConfig
}

// NewRenderPipeline creates a pipeline. A zero config gets defaults.
func NewRenderPipeline(cfg RenderConfig) *RenderPipeline {
	if cfg.PeerMaxAge == 0 {
		cfg.PeerMaxAge = DefaultRenderConfig().PeerMaxAge
	}
	return &RenderPipeline{cfg: cfg}
}

// BuildFrame appends draw commands for one frame to buf and returns it.
// Clustered members are drawn as badges only; ungrouped entities are drawn
// individually with their timer and status glyphs.
func (r *RenderPipeline) BuildFrame(
	proj Projection,
	placed []PlacedEntity,
	clusters []Cluster,
	ungrouped []EntityID,
	anim *TimerAnimator,
	lassoPath []ScreenPoint,
	now time.Time,
	buf []DrawCommand,
) []DrawCommand {
	// Countdown values refresh once per second via the animator; before the
	// first tick, fall back to the frame time.
	cnow := anim.CountdownNow()
	if cnow.IsZero() {
		cnow = now
	}

	byID := make(map[EntityID]PlacedEntity, len(placed))
	for _, p := range placed {
		byID[p.Entity.Ref().ID] = p
	}

	for _, id := range ungrouped {
		p, known := byID[id]
		if !known {
			continue
		}
		buf = r.appendEntity(proj, p, anim, cnow, buf)
	}

	for _, c := range clusters {
		buf = append(buf, DrawCommand{
			Op:     OpClusterBadge,
			Screen: proj.ToScreen(c.Center),
			Count:  len(c.Members),
			Alpha:  1,
			Color:  ColorWhite,
		})
	}

	if len(lassoPath) >= 2 {
		buf = append(buf, DrawCommand{
			Op:     OpLassoPath,
			Points: append([]ScreenPoint(nil), lassoPath...),
			Alpha:  1,
			Color:  ColorWhite,
		})
	}
	return buf
}

// appendEntity emits the base glyph plus timer/status overlays for one
// ungrouped entity.
func (r *RenderPipeline) appendEntity(proj Projection, p PlacedEntity, anim *TimerAnimator, cnow time.Time, buf []DrawCommand) []DrawCommand {
	e := p.Entity
	id := e.Ref().ID

	alpha := 1.0
	scale := 1.0
	state := anim.State(id)
	if state != nil {
		alpha = state.FadeAlpha
		scale = state.RingScale
	}

	switch e.Kind() {
	case KindPointOfInterest:
		poi := e.(*PointOfInterest)
		buf = append(buf, DrawCommand{
			Op: OpMarker, Entity: e.Ref(), Screen: p.Screen,
			Color: poi.Color, Alpha: alpha, Shape: poi.Shape, Label: poi.Label,
		})

	case KindLine:
		line := e.(*Line)
		if len(line.Points) < 2 {
			return buf // not drawable
		}
		pts := make([]ScreenPoint, len(line.Points))
		for i, gp := range line.Points {
			pts[i] = proj.ToScreen(gp)
		}
		buf = append(buf, DrawCommand{
			Op: OpPolyline, Entity: e.Ref(), Points: pts,
			Color: line.Color, Alpha: alpha, Style: line.Style, Arrow: line.Arrow,
		})

	case KindArea:
		area := e.(*Area)
		buf = append(buf, DrawCommand{
			Op: OpAreaCircle, Entity: e.Ref(), Screen: p.Screen,
			RadiusPx: GroundResolution(proj, area.Center, area.RadiusMeters),
			Color:    area.Color, Alpha: alpha,
		})

	case KindPolygon:
		poly := e.(*Polygon)
		if len(poly.Points) < 3 {
			return buf
		}
		pts := make([]ScreenPoint, len(poly.Points))
		for i, gp := range poly.Points {
			pts[i] = proj.ToScreen(gp)
		}
		buf = append(buf, DrawCommand{
			Op: OpPolygonFill, Entity: e.Ref(), Points: pts,
			Color: poly.Color, Alpha: alpha, Label: poly.Label,
		})

	case KindPeerDot:
		peer := e.(*PeerDot)
		buf = append(buf, DrawCommand{
			Op: OpPeerDot, Entity: e.Ref(), Screen: p.Screen,
			Color: peer.StatusColor, Alpha: alpha, Label: peer.PeerID,
			Stale: peer.Stale(cnow, r.cfg.PeerMaxAge),
		})

	case KindDeviceDot:
		dev := e.(*DeviceDot)
		buf = append(buf, DrawCommand{
			Op: OpDeviceDot, Entity: e.Ref(), Screen: p.Screen,
			Alpha: 1, Color: ColorWhite, Stale: dev.Stale,
		})
	}

	// Countdown ring for anything expiring.
	if secs, hasTimer := SecondsRemaining(e, cnow); hasTimer {
		buf = append(buf, DrawCommand{
			Op: OpTimerGlyph, Entity: e.Ref(), Screen: p.Screen,
			Alpha: alpha, Color: ColorWhite,
			SweepAngle: anim.SweepAngle(), SecondsLeft: secs,
		})
	}

	// Delivery-status indicator.
	if state != nil && state.Status != StatusNone {
		buf = append(buf, DrawCommand{
			Op: OpStatusGlyph, Entity: e.Ref(), Screen: p.Screen,
			Alpha: alpha, Scale: scale, Color: ColorWhite,
			Status: state.Status, OrbitPhase: state.OrbitPhase,
		})
	}
	return buf
}
