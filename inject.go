package tacmap

// Input injection helpers for tests and demos. Each helper drives the real
// entry points so the full arbiter path is exercised, identical to live
// touch input.

// InjectTap feeds a press immediately followed by a release at the same
// point. With the default thresholds and a real clock this resolves as a
// quick tap.
func (e *Engine) InjectTap(p ScreenPoint) {
	e.OnPointerDown(p, 0)
	e.OnPointerUp(p, 0)
}

// InjectDrag feeds a press at from, steps evenly interpolated moves, and a
// release at to. Minimum steps is 1.
func (e *Engine) InjectDrag(from, to ScreenPoint, steps int) {
	if steps < 1 {
		steps = 1
	}
	e.OnPointerDown(from, 0)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		e.OnPointerMove(ScreenPoint{
			X: from.X + (to.X-from.X)*t,
			Y: from.Y + (to.Y-from.Y)*t,
		}, 0)
	}
	e.OnPointerUp(to, 0)
}

// InjectLasso feeds a press at the first path point, moves along the rest,
// and releases at the last. Callers enable lasso mode first.
func (e *Engine) InjectLasso(path []ScreenPoint) {
	if len(path) == 0 {
		return
	}
	e.OnPointerDown(path[0], 0)
	for _, p := range path[1:] {
		e.OnPointerMove(p, 0)
	}
	e.OnPointerUp(path[len(path)-1], 0)
}
