package tacmap

import (
	"time"

	"github.com/rs/zerolog"
)

// Config aggregates the tuning knobs for every engine component.
type Config struct {
	Hit      HitConfig
	Cull     CullConfig
	Cluster  ClusterConfig
	Arbiter  ArbiterConfig
	Animator AnimatorConfig
	Render   RenderConfig
}

// DefaultConfig returns the standard engine tuning.
func DefaultConfig() Config {
	return Config{
		Hit:      DefaultHitConfig(),
		Cull:     DefaultCullConfig(),
		Cluster:  DefaultClusterConfig(),
		Arbiter:  DefaultArbiterConfig(),
		Animator: DefaultAnimatorConfig(),
		Render:   DefaultRenderConfig(),
	}
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger sets the anomaly logger. Default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock injects a clock for tests. Default is the system clock.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithConfig replaces the default component tuning.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// --- Handler registry ---

type eventHandler struct {
	id uint32
	fn func(Event)
}

type invalidateHandler struct {
	id uint32
	fn func()
}

// handlerRegistry holds registered callbacks per emitted event kind.
type handlerRegistry struct {
	selected   []eventHandler
	longPress  []eventHandler
	lasso      []eventHandler
	dismiss    []eventHandler
	invalidate []invalidateHandler
	nextID     uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id     uint32
	engine *Engine
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.engine == nil {
		return
	}
	reg := &h.engine.handlers
	reg.selected = removeEventHandler(reg.selected, h.id)
	reg.longPress = removeEventHandler(reg.longPress, h.id)
	reg.lasso = removeEventHandler(reg.lasso, h.id)
	reg.dismiss = removeEventHandler(reg.dismiss, h.id)
	reg.invalidate = removeInvalidateHandler(reg.invalidate, h.id)
}

func removeEventHandler(s []eventHandler, id uint32) []eventHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = eventHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeInvalidateHandler(s []invalidateHandler, id uint32) []invalidateHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = invalidateHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Engine ---

// Engine is the overlay's interaction and rendering core. It turns raw
// pointer events into classified gestures against the current entity set,
// maintains the culled and clustered view of that set, and produces draw
// commands for an external renderer.
//
// Every method must be called from the same goroutine (the UI event loop).
// External producers hand new data off via OnEntitiesChanged and
// OnProjectionChanged rather than mutating shared state.
type Engine struct {
	log   zerolog.Logger
	clock Clock
	cfg   Config
	proj  Projection

	hit      *HitTester
	culler   *ViewportCuller
	cluster  *ClusterEngine
	arbiter  *GestureArbiter
	animator *TimerAnimator
	pipeline *RenderPipeline

	entities []Entity // validated current set, read-only references
	visible  []Entity // scratch, rebuilt per frame
	placed   []PlacedEntity
	commands []DrawCommand

	handlers       handlerRegistry
	popoverVisible bool

	// activePointer is the single tracked pointer id, -1 when idle.
	// A second simultaneous pointer is ignored.
	activePointer int

	invalidatePending bool
}

// NewEngine creates an engine over the given projection.
func NewEngine(proj Projection, opts ...Option) *Engine {
	e := &Engine{
		log:           zerolog.Nop(),
		clock:         SystemClock{},
		cfg:           DefaultConfig(),
		proj:          proj,
		activePointer: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.hit = NewHitTester(e.cfg.Hit)
	e.culler = NewViewportCuller(e.cfg.Cull, e.clock)
	e.cluster = NewClusterEngine(e.cfg.Cluster)
	e.arbiter = NewGestureArbiter(e.cfg.Arbiter, e.hit)
	e.animator = NewTimerAnimator(e.cfg.Animator)
	e.pipeline = NewRenderPipeline(e.cfg.Render)
	return e
}

// --- Event registration ---

// OnEntitySelected registers a callback for quick-tap selection, used to
// show the informational popover.
func (e *Engine) OnEntitySelected(fn func(Event)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.selected = append(e.handlers.selected, eventHandler{id: id, fn: fn})
	return CallbackHandle{id: id, engine: e}
}

// OnEntityLongPressed registers a callback for long presses, used to show
// the edit menu.
func (e *Engine) OnEntityLongPressed(fn func(Event)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.longPress = append(e.handlers.longPress, eventHandler{id: id, fn: fn})
	return CallbackHandle{id: id, engine: e}
}

// OnLassoCompleted registers a callback for finished lasso selections.
func (e *Engine) OnLassoCompleted(fn func(Event)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.lasso = append(e.handlers.lasso, eventHandler{id: id, fn: fn})
	return CallbackHandle{id: id, engine: e}
}

// OnPopoverDismissRequested registers a callback for the quick-tap-on-empty
// dismissal path.
func (e *Engine) OnPopoverDismissRequested(fn func(Event)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.dismiss = append(e.handlers.dismiss, eventHandler{id: id, fn: fn})
	return CallbackHandle{id: id, engine: e}
}

// OnInvalidate registers a redraw-request callback. State changes within a
// single entry point coalesce into at most one invalidate.
func (e *Engine) OnInvalidate(fn func()) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.invalidate = append(e.handlers.invalidate, invalidateHandler{id: id, fn: fn})
	return CallbackHandle{id: id, engine: e}
}

// --- Mode and UI state ---

// SetLassoMode toggles free-form multi-select capture.
func (e *Engine) SetLassoMode(on bool) {
	e.arbiter.SetLassoMode(on)
	e.requestInvalidate()
	e.flushInvalidate()
}

// LassoMode reports whether lasso capture is active.
func (e *Engine) LassoMode() bool { return e.arbiter.LassoMode() }

// SetPopoverVisible tells the engine whether the UI currently shows a
// popover, enabling the tap-to-dismiss path.
func (e *Engine) SetPopoverVisible(visible bool) { e.popoverVisible = visible }

// SetEntityStatus records a delivery-status transition for an annotation.
func (e *Engine) SetEntityStatus(id EntityID, status DeliveryStatus) {
	e.animator.SetStatus(id, status)
	e.requestInvalidate()
	e.flushInvalidate()
}

// --- Input entry points ---

// OnPointerDown feeds a raw pointer press. Only one pointer is tracked at a
// time; extra simultaneous pointers are ignored.
func (e *Engine) OnPointerDown(p ScreenPoint, pointerID int) {
	if e.activePointer >= 0 && e.activePointer != pointerID {
		return
	}
	e.activePointer = pointerID
	now := e.clock.Now()
	events := e.arbiter.PointerDown(now, pointerID, p, e.proj, e.visibleEntities())
	e.dispatch(events)
	if e.arbiter.LassoMode() {
		e.requestInvalidate()
	}
	e.flushInvalidate()
}

// OnPointerMove feeds a raw pointer move.
func (e *Engine) OnPointerMove(p ScreenPoint, pointerID int) {
	if pointerID != e.activePointer {
		return
	}
	events := e.arbiter.PointerMove(e.clock.Now(), pointerID, p)
	e.dispatch(events)
	if e.arbiter.LassoMode() {
		e.requestInvalidate()
	}
	e.flushInvalidate()
}

// OnPointerUp feeds a raw pointer release and resolves the gesture.
func (e *Engine) OnPointerUp(p ScreenPoint, pointerID int) {
	if pointerID != e.activePointer {
		return
	}
	e.activePointer = -1
	events := e.arbiter.PointerUp(e.clock.Now(), pointerID, p, e.proj, e.visibleEntities(), e.popoverVisible)
	e.dispatch(events)
	e.requestInvalidate()
	e.flushInvalidate()
}

// OnPointerCancel clears all gesture state unconditionally.
func (e *Engine) OnPointerCancel(pointerID int) {
	if pointerID != e.activePointer {
		return
	}
	e.activePointer = -1
	e.arbiter.PointerCancel()
	e.requestInvalidate()
	e.flushInvalidate()
}

// --- Invalidation entry points ---

// OnProjectionChanged must be called after any pan, zoom, or rotate.
func (e *Engine) OnProjectionChanged() {
	e.culler.Invalidate()
	e.requestInvalidate()
	e.flushInvalidate()
}

// OnEntitiesChanged replaces the entity set. Malformed geometry (a line
// with no points, a polygon with fewer than three) is dropped here and
// logged as an anomaly; the gesture pipeline downstream never sees it.
func (e *Engine) OnEntitiesChanged(entities []Entity) {
	e.entities = e.entities[:0]
	for _, ent := range entities {
		if err := ValidateGeometry(ent); err != nil {
			e.log.Warn().
				Str("kind", ent.Kind().String()).
				Str("id", string(ent.Ref().ID)).
				Err(err).
				Msg("dropping entity with malformed geometry")
			continue
		}
		e.entities = append(e.entities, ent)
	}
	e.animator.PruneRemoved(e.entities)
	e.requestInvalidate()
	e.flushInvalidate()
}

// OnTick advances deferred gesture timing and animation. Call at roughly
// 30 Hz; the animator gates redraw requests so idle ticks are cheap.
func (e *Engine) OnTick(now time.Time) {
	e.dispatch(e.arbiter.Tick(now))
	if e.animator.Tick(now, e.hasVisibleTimers) {
		e.requestInvalidate()
	}
	e.flushInvalidate()
}

// --- Frame production ---

// BuildFrame produces the draw-command list for the current state. The
// returned slice is reused across calls; the renderer must not retain it.
func (e *Engine) BuildFrame() []DrawCommand {
	now := e.clock.Now()
	visible := e.visibleEntities()

	e.placed = e.placed[:0]
	for _, ent := range visible {
		e.placed = append(e.placed, PlacedEntity{Entity: ent, Screen: e.proj.ToScreen(ent.Anchor())})
	}

	clusters, ungrouped := e.cluster.Cluster(e.placed, e.proj.Zoom())

	e.commands = e.pipeline.BuildFrame(
		e.proj, e.placed, clusters, ungrouped,
		e.animator, e.arbiter.LassoPath(), now, e.commands[:0],
	)
	return e.commands
}

// ExpiredEntities returns refs of entities past their expiration so the
// owning store can prune them. The engine never deletes store data itself.
func (e *Engine) ExpiredEntities() []EntityRef {
	return ExpiredIDs(e.entities, e.clock.Now())
}

// --- Internals ---

// visibleEntities returns the culled entity set for this frame, reusing the
// scratch buffer.
func (e *Engine) visibleEntities() []Entity {
	bounds := e.culler.VisibleBounds(e.proj)
	e.visible = e.culler.FilterVisible(e.entities, bounds, e.visible[:0])
	return e.visible
}

// hasVisibleTimers is the animator's redraw gate: true when any visible
// entity carries an expiration.
func (e *Engine) hasVisibleTimers() bool {
	for _, ent := range e.visibleEntities() {
		if _, hasExp := expirationOf(ent); hasExp {
			return true
		}
	}
	return false
}

// dispatch routes resolved gesture events to their registered handlers.
func (e *Engine) dispatch(events []Event) {
	for _, ev := range events {
		var handlers []eventHandler
		switch ev.Type {
		case EventEntitySelected:
			handlers = e.handlers.selected
		case EventEntityLongPressed:
			handlers = e.handlers.longPress
		case EventLassoCompleted:
			handlers = e.handlers.lasso
		case EventPopoverDismissRequested:
			handlers = e.handlers.dismiss
		}
		for _, h := range handlers {
			h.fn(ev)
		}
		e.requestInvalidate()
	}
}

// requestInvalidate marks the frame dirty; flushInvalidate delivers at most
// one downstream invalidate per entry-point call, batching high-frequency
// updates such as continuous pans.
func (e *Engine) requestInvalidate() {
	e.invalidatePending = true
}

func (e *Engine) flushInvalidate() {
	if !e.invalidatePending {
		return
	}
	e.invalidatePending = false
	for _, h := range e.handlers.invalidate {
		h.fn()
	}
}
