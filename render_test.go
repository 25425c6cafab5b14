package tacmap

import (
	"testing"
	"time"
)

func opsOf(cmds []DrawCommand) []DrawOp {
	ops := make([]DrawOp, len(cmds))
	for i, c := range cmds {
		ops[i] = c.Op
	}
	return ops
}

func findOp(cmds []DrawCommand, op DrawOp) (DrawCommand, bool) {
	for _, c := range cmds {
		if c.Op == op {
			return c, true
		}
	}
	return DrawCommand{}, false
}

func TestBuildFrameBaseGlyphs(t *testing.T) {
	f := newFlatProj(800, 600, 14)
	r := NewRenderPipeline(DefaultRenderConfig())
	anim := NewTimerAnimator(DefaultAnimatorConfig())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	poi := poiAtScreen(f, "p", 100, 100)
	line := lineAtScreen(f, "l", ScreenPoint{X: 200, Y: 200}, ScreenPoint{X: 300, Y: 200})
	poly := polyAtScreen(f, "g",
		ScreenPoint{X: 400, Y: 100}, ScreenPoint{X: 500, Y: 100}, ScreenPoint{X: 450, Y: 200})
	area := &Area{ID: "a", Center: f.FromScreen(ScreenPoint{X: 600, Y: 300}), RadiusMeters: 200}
	peer := &PeerDot{PeerID: "peer-1", Position: f.FromScreen(ScreenPoint{X: 700, Y: 400}), LastUpdate: now}
	dev := &DeviceDot{Position: f.FromScreen(ScreenPoint{X: 400, Y: 300})}

	entities := []Entity{poi, line, poly, area, peer, dev}
	placed := make([]PlacedEntity, len(entities))
	ungrouped := make([]EntityID, len(entities))
	for i, e := range entities {
		placed[i] = PlacedEntity{Entity: e, Screen: f.ToScreen(e.Anchor())}
		ungrouped[i] = e.Ref().ID
	}

	cmds := r.BuildFrame(f, placed, nil, ungrouped, anim, nil, now, nil)

	want := []DrawOp{OpMarker, OpPolyline, OpPolygonFill, OpAreaCircle, OpPeerDot, OpDeviceDot}
	got := opsOf(cmds)
	if len(got) != len(want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBuildFrameTimerGlyph(t *testing.T) {
	f := newFlatProj(800, 600, 14)
	r := NewRenderPipeline(DefaultRenderConfig())
	anim := NewTimerAnimator(DefaultAnimatorConfig())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	poi := poiAtScreen(f, "p", 100, 100)
	poi.Expiration = now.Add(90 * time.Second)
	placed := []PlacedEntity{{Entity: poi, Screen: ScreenPoint{X: 100, Y: 100}}}

	cmds := r.BuildFrame(f, placed, nil, []EntityID{"p"}, anim, nil, now, nil)

	glyph, ok := findOp(cmds, OpTimerGlyph)
	if !ok {
		t.Fatalf("no timer glyph in %v", opsOf(cmds))
	}
	if glyph.SecondsLeft != 90 {
		t.Errorf("SecondsLeft = %d, want 90", glyph.SecondsLeft)
	}
	if glyph.Entity.ID != "p" {
		t.Errorf("glyph entity = %v", glyph.Entity)
	}
}

func TestBuildFrameStatusGlyphAndFade(t *testing.T) {
	f := newFlatProj(800, 600, 14)
	r := NewRenderPipeline(DefaultRenderConfig())
	anim := NewTimerAnimator(DefaultAnimatorConfig())
	clock := newFakeClock()

	anim.SetStatus("p", StatusDelivered)
	anim.Tick(clock.Now(), neverVisible)
	clock.advance(time.Second)
	anim.Tick(clock.Now(), neverVisible)

	poi := poiAtScreen(f, "p", 100, 100)
	placed := []PlacedEntity{{Entity: poi, Screen: ScreenPoint{X: 100, Y: 100}}}
	cmds := r.BuildFrame(f, placed, nil, []EntityID{"p"}, anim, nil, clock.Now(), nil)

	status, ok := findOp(cmds, OpStatusGlyph)
	if !ok {
		t.Fatalf("no status glyph in %v", opsOf(cmds))
	}
	if status.Status != StatusDelivered {
		t.Errorf("Status = %v, want delivered", status.Status)
	}
	if status.Alpha >= 1 || status.Alpha <= 0 {
		t.Errorf("Alpha = %f, want mid-fade", status.Alpha)
	}

	marker, _ := findOp(cmds, OpMarker)
	if marker.Alpha != status.Alpha {
		t.Error("marker should fade together with its status glyph")
	}
}

func TestBuildFrameClusterBadge(t *testing.T) {
	f := newFlatProj(800, 600, 14)
	r := NewRenderPipeline(DefaultRenderConfig())
	anim := NewTimerAnimator(DefaultAnimatorConfig())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a := poiAtScreen(f, "a", 100, 100)
	b := poiAtScreen(f, "b", 120, 100)
	placed := []PlacedEntity{
		{Entity: a, Screen: ScreenPoint{X: 100, Y: 100}},
		{Entity: b, Screen: ScreenPoint{X: 120, Y: 100}},
	}
	clusters := []Cluster{{
		Center:  GeoPoint{Lat: (a.Position.Lat + b.Position.Lat) / 2, Lon: (a.Position.Lon + b.Position.Lon) / 2},
		Members: []EntityID{"a", "b"},
	}}

	cmds := r.BuildFrame(f, placed, clusters, nil, anim, nil, now, nil)

	if len(cmds) != 1 || cmds[0].Op != OpClusterBadge {
		t.Fatalf("ops = %v, want only a cluster badge", opsOf(cmds))
	}
	if cmds[0].Count != 2 {
		t.Errorf("Count = %d, want 2", cmds[0].Count)
	}
	// Members are represented by the badge alone, no individual markers.
	if _, found := findOp(cmds, OpMarker); found {
		t.Error("clustered members should not draw individual markers")
	}
}

func TestBuildFrameLassoFeedback(t *testing.T) {
	f := newFlatProj(800, 600, 14)
	r := NewRenderPipeline(DefaultRenderConfig())
	anim := NewTimerAnimator(DefaultAnimatorConfig())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	path := []ScreenPoint{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 50}}
	cmds := r.BuildFrame(f, nil, nil, nil, anim, path, now, nil)

	lasso, ok := findOp(cmds, OpLassoPath)
	if !ok {
		t.Fatal("no lasso path command")
	}
	if len(lasso.Points) != 3 {
		t.Errorf("lasso points = %d, want 3", len(lasso.Points))
	}

	// A single captured point is not worth a polyline yet.
	cmds = r.BuildFrame(f, nil, nil, nil, anim, path[:1], now, nil)
	if _, found := findOp(cmds, OpLassoPath); found {
		t.Error("1-point lasso path should not be drawn")
	}
}

func TestBuildFramePeerStaleness(t *testing.T) {
	f := newFlatProj(800, 600, 14)
	r := NewRenderPipeline(DefaultRenderConfig())
	anim := NewTimerAnimator(DefaultAnimatorConfig())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		age       time.Duration
		wantStale bool
	}{
		{"fresh", 5 * time.Second, false},
		{"at the threshold", 30 * time.Second, false},
		{"stale", 45 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peer := &PeerDot{
				PeerID:     "peer-1",
				Position:   f.FromScreen(ScreenPoint{X: 400, Y: 300}),
				LastUpdate: now.Add(-tt.age),
			}
			placed := []PlacedEntity{{Entity: peer, Screen: ScreenPoint{X: 400, Y: 300}}}
			cmds := r.BuildFrame(f, placed, nil, []EntityID{"peer-1"}, anim, nil, now, nil)
			dot, ok := findOp(cmds, OpPeerDot)
			if !ok {
				t.Fatal("no peer dot command")
			}
			if dot.Stale != tt.wantStale {
				t.Errorf("Stale = %v, want %v", dot.Stale, tt.wantStale)
			}
		})
	}
}

func TestBuildFrameSkipsMalformedGeometry(t *testing.T) {
	f := newFlatProj(800, 600, 14)
	r := NewRenderPipeline(DefaultRenderConfig())
	anim := NewTimerAnimator(DefaultAnimatorConfig())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	stub := &Line{ID: "stub", Points: []GeoPoint{f.FromScreen(ScreenPoint{X: 100, Y: 100})}}
	placed := []PlacedEntity{{Entity: stub, Screen: ScreenPoint{X: 100, Y: 100}}}

	cmds := r.BuildFrame(f, placed, nil, []EntityID{"stub"}, anim, nil, now, nil)
	if len(cmds) != 0 {
		t.Errorf("1-point line emitted commands: %v", opsOf(cmds))
	}
}
