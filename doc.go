// Package tacmap is the map-annotation overlay engine for a tactical
// awareness application: points, lines, areas, and polygons drawn over a
// live map, plus peer-location dots, expiration timers, and transient
// delivery-status indicators.
//
// The engine's job is gesture disambiguation and spatial interaction. A
// per-pointer state machine turns raw touch events into quick taps, long
// presses, and free-form lasso selections against a zoom-dependent entity
// set, while throttled viewport culling and greedy screen-space clustering
// keep hit-testing and drawing tractable as entity counts grow.
//
// # Quick start
//
//	proj := tacmap.NewMercator(center, 15, 1080, 1920)
//	engine := tacmap.NewEngine(proj)
//
//	engine.OnEntityLongPressed(func(ev tacmap.Event) {
//		// show the edit menu for ev.Entity at ev.Screen
//	})
//	engine.OnInvalidate(func() { /* request a redraw */ })
//
//	engine.OnEntitiesChanged(entities)
//	// feed pointer input and a ~30 Hz tick:
//	engine.OnPointerDown(p, id)
//	engine.OnTick(time.Now())
//	// each frame:
//	for _, cmd := range engine.BuildFrame() { /* draw */ }
//
// # Threading
//
// The entire engine runs on one goroutine, the caller's UI event loop.
// Nothing blocks: long-press timing uses a deadline polled from the tick,
// and redraw requests within an entry point coalesce into one invalidate.
// External producers (entity updates, projection changes) hand off to the
// loop rather than mutating state directly.
//
// Rendering is decoupled: BuildFrame emits renderer-agnostic DrawCommands.
// cmd/tacmap-viewer contains an [Ebitengine] renderer for them.
//
// [Ebitengine]: https://ebitengine.org
package tacmap
