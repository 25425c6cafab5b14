package tacmap

import (
	"math"
	"time"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default annotation tint.
var ColorWhite = Color{1, 1, 1, 1}

// WithAlpha returns a copy of the color with A replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// ScreenPoint is a position in screen pixels. The coordinate system has its
// origin at the top-left, with Y increasing downward.
type ScreenPoint struct {
	X, Y float64
}

// Dist returns the Euclidean distance to another screen point.
func (p ScreenPoint) Dist(o ScreenPoint) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned rectangle in screen pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() ScreenPoint {
	return ScreenPoint{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// EntityKind distinguishes the annotation and dot variants in the overlay.
type EntityKind uint8

const (
	KindDeviceDot       EntityKind = iota // this device's own position marker
	KindPeerDot                           // another user's position marker
	KindLine                              // polyline annotation
	KindPointOfInterest                   // single-point marker annotation
	KindArea                              // circle annotation (center + radius)
	KindPolygon                           // closed polygon annotation
)

// String returns the kind name for logging.
func (k EntityKind) String() string {
	switch k {
	case KindDeviceDot:
		return "device"
	case KindPeerDot:
		return "peer"
	case KindLine:
		return "line"
	case KindPointOfInterest:
		return "poi"
	case KindArea:
		return "area"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// EntityID is a stable identifier, unique within an entity's kind.
type EntityID string

// EntityRef identifies a single entity by kind and id.
type EntityRef struct {
	Kind EntityKind
	ID   EntityID
}

// MarkerShape selects the glyph drawn for a point of interest.
type MarkerShape uint8

const (
	ShapeCircle MarkerShape = iota
	ShapeSquare
	ShapeTriangle
	ShapeExclamation
)

// LineStyle selects solid or dashed rendering for lines.
type LineStyle uint8

const (
	LineSolid LineStyle = iota
	LineDashed
)

// ArrowStyle selects the arrow head drawn at the end of a line.
type ArrowStyle uint8

const (
	ArrowNone ArrowStyle = iota
	ArrowEnd
)

// DeliveryStatus tracks the sync state of an annotation as reported by the
// owning store. Status transitions drive the animator's glyph effects.
type DeliveryStatus uint8

const (
	StatusNone      DeliveryStatus = iota
	StatusSending                  // orbiting-dot indicator
	StatusRetrying                 // same indicator as sending, no decay
	StatusDelivered                // terminal; fades out over 2.5s
	StatusFailed                   // terminal; ring scales up over 2s
)

// Terminal reports whether the status is an end state.
func (s DeliveryStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// EventType identifies a gesture resolution emitted by the engine.
type EventType uint8

const (
	EventEntitySelected          EventType = iota // quick tap on an entity
	EventEntityLongPressed                        // press held 500ms without movement
	EventLassoCompleted                           // free-form multi-select finished
	EventPopoverDismissRequested                  // quick tap on empty space while a popover is up
)

// Event is a resolved gesture. Which fields are valid depends on Type:
// Entity and Screen for EntitySelected/EntityLongPressed; Selected and
// Screen for LassoCompleted; Screen only for PopoverDismissRequested.
type Event struct {
	Type     EventType
	Entity   EntityRef
	Screen   ScreenPoint
	Selected []EntityID
}

// Clock abstracts wall-clock time so gesture timing and throttles are
// testable without real sleeps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
