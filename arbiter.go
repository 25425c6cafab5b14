package tacmap

import "time"

// ArbiterConfig tunes gesture classification thresholds.
type ArbiterConfig struct {
	// LongPressDelay is how long a pointer must stay down and still
	// before the long-press fires.
	LongPressDelay time.Duration
	// QuickTapMax is the maximum down-to-up time for a quick tap.
	QuickTapMax time.Duration
	// MoveCancelPx is the displacement from the down position beyond
	// which a pending candidate is cancelled, so drag-to-pan is never
	// misread as a press.
	MoveCancelPx float64
	// LassoMinPoints is the minimum captured path length for a lasso to
	// produce a selection.
	LassoMinPoints int
	// LassoSimplifyPx drops captured points closer than this to the
	// previous one, bounding path size during a slow drag.
	LassoSimplifyPx float64
}

// DefaultArbiterConfig returns the standard gesture thresholds.
func DefaultArbiterConfig() ArbiterConfig {
	return ArbiterConfig{
		LongPressDelay:  500 * time.Millisecond,
		QuickTapMax:     300 * time.Millisecond,
		MoveCancelPx:    40,
		LassoMinPoints:  3,
		LassoSimplifyPx: 3,
	}
}

// gestureState is the arbiter's position in the down-move-up lifecycle.
type gestureState uint8

const (
	stateIdle          gestureState = iota
	stateCandidateDown              // pointer down on an armed candidate
	stateLassoCapture               // lasso mode drag in progress
	stateConsumed                   // candidate resolved or cancelled; ignore until up
)

// oneShotTimer is a deadline checked from the event loop rather than a
// background goroutine, keeping the whole gesture pipeline single-threaded.
// Cancelling is idempotent; cancelling a fired or never-armed timer is a
// no-op.
type oneShotTimer struct {
	deadline time.Time
	armed    bool
}

func (t *oneShotTimer) schedule(at time.Time) {
	t.deadline = at
	t.armed = true
}

func (t *oneShotTimer) cancel() {
	t.armed = false
}

// fire reports true exactly once when the armed deadline has passed.
func (t *oneShotTimer) fire(now time.Time) bool {
	if t.armed && !now.Before(t.deadline) {
		t.armed = false
		return true
	}
	return false
}

// pointerSession is the transient state for the tracked pointer, created on
// down and destroyed on up or cancel.
type pointerSession struct {
	pointerID int
	downTime  time.Time
	downPos   ScreenPoint
	lastPos   ScreenPoint
	candidate EntityRef
	armed     bool
	state     gestureState
}

// GestureArbiter classifies raw pointer sequences into quick taps, long
// presses, lasso selections, and no-ops. Single-pointer model: at most one
// session is tracked and a second simultaneous pointer is ignored.
//
// All methods return the events resolved by that input, in order. The
// caller dispatches them; the arbiter never calls out.
type GestureArbiter struct {
	cfg ArbiterConfig
	hit *HitTester

	session   *pointerSession
	longPress oneShotTimer
	lassoMode bool
	lassoPath []ScreenPoint

	// Global last-tap tracking for the popover dismissal path, independent
	// of the entity-specific session.
	lastDownTime  time.Time
	lastDownPos   ScreenPoint
	lastTapMoved  bool
	lastTapActive bool
}

// NewGestureArbiter creates an arbiter using the given hit tester.
func NewGestureArbiter(cfg ArbiterConfig, hit *HitTester) *GestureArbiter {
	def := DefaultArbiterConfig()
	if cfg.LongPressDelay == 0 {
		cfg.LongPressDelay = def.LongPressDelay
	}
	if cfg.QuickTapMax == 0 {
		cfg.QuickTapMax = def.QuickTapMax
	}
	if cfg.MoveCancelPx == 0 {
		cfg.MoveCancelPx = def.MoveCancelPx
	}
	if cfg.LassoMinPoints == 0 {
		cfg.LassoMinPoints = def.LassoMinPoints
	}
	if cfg.LassoSimplifyPx == 0 {
		cfg.LassoSimplifyPx = def.LassoSimplifyPx
	}
	if hit == nil {
		hit = NewHitTester(HitConfig{})
	}
	return &GestureArbiter{cfg: cfg, hit: hit}
}

// SetLassoMode toggles free-form capture. While set, pointer-down bypasses
// entity hit-testing entirely and starts a polygon path instead.
func (a *GestureArbiter) SetLassoMode(on bool) {
	a.lassoMode = on
	if !on {
		a.lassoPath = a.lassoPath[:0]
		// A capture in flight has no path to extend anymore; the rest of
		// the drag is inert until pointer-up ends the session.
		if s := a.session; s != nil && s.state == stateLassoCapture {
			s.state = stateConsumed
		}
	}
}

// LassoMode reports whether lasso capture is active.
func (a *GestureArbiter) LassoMode() bool { return a.lassoMode }

// LassoPath returns the path captured so far; the render pipeline draws it
// as feedback during capture. The returned slice must not be retained.
func (a *GestureArbiter) LassoPath() []ScreenPoint { return a.lassoPath }

// PointerDown starts a session. Visible entities are the hit-test candidate
// set; a second pointer while a session is active is ignored.
func (a *GestureArbiter) PointerDown(now time.Time, pointerID int, p ScreenPoint, proj Projection, visible []Entity) []Event {
	events := a.checkLongPress(now)

	if a.session != nil {
		return events // single-pointer model
	}

	a.lastDownTime = now
	a.lastDownPos = p
	a.lastTapMoved = false
	a.lastTapActive = true

	s := &pointerSession{
		pointerID: pointerID,
		downTime:  now,
		downPos:   p,
		lastPos:   p,
	}
	a.session = s

	if a.lassoMode {
		s.state = stateLassoCapture
		a.lassoPath = append(a.lassoPath[:0], p)
		return events
	}

	if ref, found := a.hit.FindAt(proj, p, visible); found {
		s.candidate = ref
		s.armed = true
		s.state = stateCandidateDown
		a.longPress.schedule(now.Add(a.cfg.LongPressDelay))
	} else {
		s.state = stateConsumed
	}
	return events
}

// PointerMove advances the session. Movement beyond the cancel threshold
// clears an armed candidate and its pending long press.
func (a *GestureArbiter) PointerMove(now time.Time, pointerID int, p ScreenPoint) []Event {
	events := a.checkLongPress(now)

	s := a.session
	if s == nil || s.pointerID != pointerID {
		return events
	}
	s.lastPos = p

	if a.lastTapActive && p.Dist(a.lastDownPos) > a.cfg.MoveCancelPx {
		a.lastTapMoved = true
	}

	switch s.state {
	case stateLassoCapture:
		if last := a.lassoPath[len(a.lassoPath)-1]; p.Dist(last) >= a.cfg.LassoSimplifyPx {
			a.lassoPath = append(a.lassoPath, p)
		}
	case stateCandidateDown:
		if p.Dist(s.downPos) > a.cfg.MoveCancelPx {
			a.longPress.cancel()
			s.armed = false
			s.state = stateConsumed
		}
	}
	return events
}

// PointerUp resolves the session. popoverVisible enables the secondary
// dismissal path: a non-moving quick tap that no entity candidate consumed
// requests dismissing the current popover.
func (a *GestureArbiter) PointerUp(now time.Time, pointerID int, p ScreenPoint, proj Projection, visible []Entity, popoverVisible bool) []Event {
	events := a.checkLongPress(now)

	s := a.session
	if s == nil || s.pointerID != pointerID {
		return events
	}
	a.session = nil
	a.longPress.cancel()

	consumed := false
	switch s.state {
	case stateCandidateDown:
		if s.armed &&
			now.Sub(s.downTime) < a.cfg.QuickTapMax &&
			p.Dist(s.downPos) < a.cfg.MoveCancelPx {
			events = append(events, Event{
				Type:   EventEntitySelected,
				Entity: s.candidate,
				Screen: s.downPos,
			})
			consumed = true
		}

	case stateLassoCapture:
		events = append(events, a.completeLasso(proj, visible, p)...)
		consumed = true
	}

	// Secondary, lower-priority arbitration: dismiss a visible popover on
	// any non-moving quick tap that nothing else consumed.
	if !consumed && popoverVisible && a.lastTapActive && !a.lastTapMoved &&
		now.Sub(a.lastDownTime) < a.cfg.QuickTapMax {
		events = append(events, Event{Type: EventPopoverDismissRequested, Screen: p})
	}
	a.lastTapActive = false
	return events
}

// PointerCancel clears all transient state unconditionally.
func (a *GestureArbiter) PointerCancel() {
	a.session = nil
	a.longPress.cancel()
	a.lassoPath = a.lassoPath[:0]
	a.lastTapActive = false
}

// Tick drives deferred timing from the event loop. Call it periodically;
// long presses also resolve lazily on the next pointer event, so a stalled
// ticker delays but never drops them.
func (a *GestureArbiter) Tick(now time.Time) []Event {
	return a.checkLongPress(now)
}

// checkLongPress fires the pending long press if its deadline passed.
// Firing after the candidate was cleared is a no-op by construction: the
// timer is cancelled together with the candidate.
func (a *GestureArbiter) checkLongPress(now time.Time) []Event {
	if !a.longPress.fire(now) {
		return nil
	}
	s := a.session
	if s == nil || !s.armed {
		return nil
	}
	// Candidate is consumed; the eventual pointer-up does nothing for it.
	s.armed = false
	s.state = stateConsumed
	return []Event{{
		Type:   EventEntityLongPressed,
		Entity: s.candidate,
		Screen: s.downPos,
	}}
}

// completeLasso closes the captured path and selects every visible entity
// whose screen anchor falls inside it. A path below the minimum point count
// selects nothing.
func (a *GestureArbiter) completeLasso(proj Projection, visible []Entity, up ScreenPoint) []Event {
	path := a.lassoPath
	if last := len(path) - 1; last >= 0 && path[last].Dist(up) >= a.cfg.LassoSimplifyPx {
		path = append(path, up)
	}
	defer func() { a.lassoPath = a.lassoPath[:0] }()

	if len(path) < a.cfg.LassoMinPoints {
		return nil
	}

	var selected []EntityID
	for _, e := range visible {
		if PointInPolygon(proj.ToScreen(e.Anchor()), path) {
			selected = append(selected, e.Ref().ID)
		}
	}
	if len(selected) == 0 {
		return nil
	}
	return []Event{{Type: EventLassoCompleted, Selected: selected, Screen: up}}
}
