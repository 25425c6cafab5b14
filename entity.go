package tacmap

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entity is any drawable, interactive element of the overlay: annotations
// (POI, line, area, polygon) plus peer and device position dots. Concrete
// types are the closed set enumerated by EntityKind; consumers switch on
// Kind() rather than type-asserting so a new kind is a visible change at
// every switch site.
type Entity interface {
	Kind() EntityKind
	Ref() EntityRef
	// Anchor is the single coordinate used for culling and lasso
	// containment: position for point-likes, first point for lines and
	// polygons, center for areas.
	Anchor() GeoPoint
}

// Expiring is implemented by entities that can carry an expiration time.
type Expiring interface {
	Entity
	// ExpiresAt returns the expiration time and whether one is set.
	ExpiresAt() (time.Time, bool)
}

// DeviceDotID is the fixed id of the singleton device dot.
const DeviceDotID EntityID = "device"

// newID mints an entity id. IDs are normally assigned by the annotation
// store; these are for locally created annotations before sync.
func newID() EntityID {
	return EntityID(uuid.NewString())
}

// --- PointOfInterest ---

// PointOfInterest is a single-point marker annotation.
type PointOfInterest struct {
	ID         EntityID
	Position   GeoPoint
	Shape      MarkerShape
	Color      Color
	Label      string
	Expiration time.Time // zero value = no expiration
}

// NewPointOfInterest creates a POI with a fresh id.
func NewPointOfInterest(pos GeoPoint, shape MarkerShape, color Color) *PointOfInterest {
	return &PointOfInterest{ID: newID(), Position: pos, Shape: shape, Color: color}
}

func (p *PointOfInterest) Kind() EntityKind { return KindPointOfInterest }
func (p *PointOfInterest) Ref() EntityRef   { return EntityRef{Kind: KindPointOfInterest, ID: p.ID} }
func (p *PointOfInterest) Anchor() GeoPoint { return p.Position }

// ExpiresAt returns the expiration time and whether one is set.
func (p *PointOfInterest) ExpiresAt() (time.Time, bool) {
	return p.Expiration, !p.Expiration.IsZero()
}

// --- Line ---

// Line is a polyline annotation. A line needs at least 2 points to be drawn
// or hit-tested as segments; a 1-point line is tolerated but inert.
type Line struct {
	ID         EntityID
	Points     []GeoPoint
	Style      LineStyle
	Color      Color
	Arrow      ArrowStyle
	Expiration time.Time
}

// NewLine creates a line with a fresh id.
func NewLine(points []GeoPoint, style LineStyle, color Color) *Line {
	return &Line{ID: newID(), Points: points, Style: style, Color: color}
}

func (l *Line) Kind() EntityKind { return KindLine }
func (l *Line) Ref() EntityRef   { return EntityRef{Kind: KindLine, ID: l.ID} }

// Anchor returns the first point. Zero-point lines are malformed and
// filtered out before anchor use.
func (l *Line) Anchor() GeoPoint {
	if len(l.Points) == 0 {
		return GeoPoint{}
	}
	return l.Points[0]
}

// ExpiresAt returns the expiration time and whether one is set.
func (l *Line) ExpiresAt() (time.Time, bool) {
	return l.Expiration, !l.Expiration.IsZero()
}

// --- Area ---

// Area is a circle annotation defined by a center and a ground radius.
type Area struct {
	ID           EntityID
	Center       GeoPoint
	RadiusMeters float64
	Color        Color
	Expiration   time.Time
}

// NewArea creates an area with a fresh id.
func NewArea(center GeoPoint, radiusMeters float64, color Color) *Area {
	return &Area{ID: newID(), Center: center, RadiusMeters: radiusMeters, Color: color}
}

func (a *Area) Kind() EntityKind { return KindArea }
func (a *Area) Ref() EntityRef   { return EntityRef{Kind: KindArea, ID: a.ID} }
func (a *Area) Anchor() GeoPoint { return a.Center }

// ExpiresAt returns the expiration time and whether one is set.
func (a *Area) ExpiresAt() (time.Time, bool) {
	return a.Expiration, !a.Expiration.IsZero()
}

// --- Polygon ---

// Polygon is a closed polygon annotation with at least 3 vertices.
type Polygon struct {
	ID         EntityID
	Points     []GeoPoint
	Color      Color
	Label      string
	Expiration time.Time
}

// NewPolygon creates a polygon with a fresh id.
func NewPolygon(points []GeoPoint, color Color) *Polygon {
	return &Polygon{ID: newID(), Points: points, Color: color}
}

func (p *Polygon) Kind() EntityKind { return KindPolygon }
func (p *Polygon) Ref() EntityRef   { return EntityRef{Kind: KindPolygon, ID: p.ID} }

// Anchor returns the first vertex. Malformed polygons are filtered out
// before anchor use.
func (p *Polygon) Anchor() GeoPoint {
	if len(p.Points) == 0 {
		return GeoPoint{}
	}
	return p.Points[0]
}

// ExpiresAt returns the expiration time and whether one is set.
func (p *Polygon) ExpiresAt() (time.Time, bool) {
	return p.Expiration, !p.Expiration.IsZero()
}

// --- PeerDot ---

// PeerDot is another user's live position, keyed by peer id.
type PeerDot struct {
	PeerID      string
	Position    GeoPoint
	StatusColor Color
	LastUpdate  time.Time
}

func (d *PeerDot) Kind() EntityKind { return KindPeerDot }
func (d *PeerDot) Ref() EntityRef   { return EntityRef{Kind: KindPeerDot, ID: EntityID(d.PeerID)} }
func (d *PeerDot) Anchor() GeoPoint { return d.Position }

// Stale reports whether the last update is older than maxAge.
func (d *PeerDot) Stale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(d.LastUpdate) > maxAge
}

// --- DeviceDot ---

// DeviceDot is the singleton marker for this device's own position.
type DeviceDot struct {
	Position GeoPoint
	Stale    bool
}

func (d *DeviceDot) Kind() EntityKind { return KindDeviceDot }
func (d *DeviceDot) Ref() EntityRef   { return EntityRef{Kind: KindDeviceDot, ID: DeviceDotID} }
func (d *DeviceDot) Anchor() GeoPoint { return d.Position }

// --- Validation & expiration helpers ---

// ValidateGeometry reports whether an entity's geometry is well formed
// enough to participate in hit-testing and clustering. Malformed entities
// are skipped, not faulted on; the returned error is for the anomaly log.
func ValidateGeometry(e Entity) error {
	switch e.Kind() {
	case KindLine:
		if len(e.(*Line).Points) == 0 {
			return fmt.Errorf("line %s has no points", e.Ref().ID)
		}
	case KindPolygon:
		if n := len(e.(*Polygon).Points); n < 3 {
			return fmt.Errorf("polygon %s has %d points, need 3", e.Ref().ID, n)
		}
	case KindDeviceDot, KindPeerDot, KindPointOfInterest, KindArea:
		// Point-likes are always well formed.
	}
	return nil
}

// SecondsRemaining returns the whole seconds until the entity expires,
// clamped at zero. Entities without an expiration return ok=false.
func SecondsRemaining(e Entity, now time.Time) (secs int, ok bool) {
	exp, hasExp := expirationOf(e)
	if !hasExp {
		return 0, false
	}
	remaining := exp.Sub(now)
	if remaining < 0 {
		return 0, true
	}
	return int(remaining / time.Second), true
}

// expirationOf extracts the optional expiration time from any entity.
func expirationOf(e Entity) (time.Time, bool) {
	if ex, isExp := e.(Expiring); isExp {
		return ex.ExpiresAt()
	}
	return time.Time{}, false
}

// ExpiredIDs returns the refs of all entities whose expiration has passed.
// The overlay never deletes store entities itself; the owner is expected to
// prune these.
func ExpiredIDs(entities []Entity, now time.Time) []EntityRef {
	var expired []EntityRef
	for _, e := range entities {
		if exp, hasExp := expirationOf(e); hasExp && !exp.After(now) {
			expired = append(expired, e.Ref())
		}
	}
	return expired
}
