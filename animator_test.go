package tacmap

import (
	"math"
	"testing"
	"time"
)

func alwaysVisible() bool { return true }
func neverVisible() bool  { return false }

func TestAnimatorDeliveredFade(t *testing.T) {
	a := NewTimerAnimator(DefaultAnimatorConfig())
	clock := newFakeClock()

	a.SetStatus("msg-1", StatusDelivered)
	a.Tick(clock.Now(), neverVisible) // establish lastTick

	clock.advance(500 * time.Millisecond)
	if !a.Tick(clock.Now(), neverVisible) {
		t.Error("active fade should request a redraw")
	}
	s := a.State("msg-1")
	if s == nil {
		t.Fatal("state missing during fade")
	}
	if s.FadeAlpha >= 1 || s.FadeAlpha <= 0 {
		t.Errorf("FadeAlpha = %f, want strictly between 0 and 1", s.FadeAlpha)
	}
	first := s.FadeAlpha

	clock.advance(500 * time.Millisecond)
	a.Tick(clock.Now(), neverVisible)
	if s.FadeAlpha >= first {
		t.Errorf("fade should be monotonic: %f then %f", first, s.FadeAlpha)
	}

	// Run past the full duration; the finished state is pruned next tick.
	clock.advance(2 * time.Second)
	a.Tick(clock.Now(), neverVisible)
	clock.advance(100 * time.Millisecond)
	a.Tick(clock.Now(), neverVisible)
	if a.State("msg-1") != nil {
		t.Error("finished fade state should be pruned")
	}
}

func TestAnimatorFailedRingSettles(t *testing.T) {
	a := NewTimerAnimator(DefaultAnimatorConfig())
	clock := newFakeClock()

	a.SetStatus("msg-2", StatusFailed)
	a.Tick(clock.Now(), neverVisible)

	clock.advance(time.Second)
	a.Tick(clock.Now(), neverVisible)
	s := a.State("msg-2")
	if s == nil || s.RingScale <= 1 || s.RingScale >= 2.5 {
		t.Fatalf("mid-animation RingScale = %+v, want in (1, 2.5)", s)
	}

	clock.advance(2 * time.Second)
	a.Tick(clock.Now(), neverVisible)
	if !approxEqual(s.RingScale, 2.5, 1e-3) {
		t.Errorf("settled RingScale = %f, want 2.5", s.RingScale)
	}

	// Unlike the fade, a failed glyph persists until the status is cleared.
	clock.advance(time.Second)
	a.Tick(clock.Now(), neverVisible)
	if a.State("msg-2") == nil {
		t.Error("failed state should persist after the ring settles")
	}
}

func TestAnimatorOrbit(t *testing.T) {
	a := NewTimerAnimator(DefaultAnimatorConfig())
	clock := newFakeClock()

	a.SetStatus("msg-3", StatusSending)
	a.Tick(clock.Now(), neverVisible)

	clock.advance(250 * time.Millisecond)
	if !a.Tick(clock.Now(), neverVisible) {
		t.Error("orbiting status should request a redraw")
	}
	s := a.State("msg-3")
	// Quarter second at one orbit per second is a quarter turn.
	if !approxEqual(s.OrbitPhase, math.Pi/2, 1e-6) {
		t.Errorf("OrbitPhase = %f, want pi/2", s.OrbitPhase)
	}

	// Retrying keeps the same orbit going, phase uninterrupted.
	a.SetStatus("msg-3", StatusRetrying)
	clock.advance(250 * time.Millisecond)
	a.Tick(clock.Now(), neverVisible)
	if !approxEqual(s.OrbitPhase, math.Pi, 1e-6) {
		t.Errorf("OrbitPhase after retry transition = %f, want pi", s.OrbitPhase)
	}
}

func TestAnimatorSetStatusNoneClears(t *testing.T) {
	a := NewTimerAnimator(DefaultAnimatorConfig())
	a.SetStatus("msg-4", StatusSending)
	a.SetStatus("msg-4", StatusNone)
	if a.State("msg-4") != nil {
		t.Error("StatusNone should drop the state")
	}
}

func TestAnimatorReenterSendingIsNoop(t *testing.T) {
	a := NewTimerAnimator(DefaultAnimatorConfig())
	clock := newFakeClock()

	a.SetStatus("msg-5", StatusSending)
	a.Tick(clock.Now(), neverVisible)
	clock.advance(100 * time.Millisecond)
	a.Tick(clock.Now(), neverVisible)

	phase := a.State("msg-5").OrbitPhase
	a.SetStatus("msg-5", StatusSending)
	if a.State("msg-5").OrbitPhase != phase {
		t.Error("re-entering sending should not reset the orbit phase")
	}
}

func TestAnimatorRedrawGate(t *testing.T) {
	a := NewTimerAnimator(DefaultAnimatorConfig())
	clock := newFakeClock()

	// No status effects, no visible timers: the tick is free.
	if a.Tick(clock.Now(), neverVisible) {
		t.Error("idle tick should not request a redraw")
	}

	// The probe answer is cached; flipping visibility inside the check
	// interval is not seen yet.
	probeValue := true
	probe := func() bool { return probeValue }
	clock.advance(50 * time.Millisecond)
	if a.Tick(clock.Now(), probe) {
		t.Error("cached probe answer should still gate the redraw off")
	}

	// Past the interval the probe runs again.
	clock.advance(2 * time.Second)
	if !a.Tick(clock.Now(), probe) {
		t.Error("visible timers should request a redraw after a fresh probe")
	}
}

func TestAnimatorCountdownRefreshesOncePerSecond(t *testing.T) {
	a := NewTimerAnimator(DefaultAnimatorConfig())
	clock := newFakeClock()

	a.Tick(clock.Now(), alwaysVisible)
	first := a.CountdownNow()

	// Sub-second ticks reuse the same logical countdown timestamp.
	clock.advance(300 * time.Millisecond)
	a.Tick(clock.Now(), alwaysVisible)
	if !a.CountdownNow().Equal(first) {
		t.Error("countdown timestamp refreshed inside the interval")
	}

	clock.advance(800 * time.Millisecond)
	a.Tick(clock.Now(), alwaysVisible)
	if a.CountdownNow().Equal(first) {
		t.Error("countdown timestamp not refreshed after the interval")
	}
}

func TestAnimatorSweepAngle(t *testing.T) {
	a := NewTimerAnimator(DefaultAnimatorConfig())

	// 15 seconds into the minute is a quarter revolution.
	at := time.UnixMilli(15000)
	a.Tick(at, neverVisible)
	if got := a.SweepAngle(); !approxEqual(got, math.Pi/2, 1e-6) {
		t.Errorf("SweepAngle at :15 = %f, want pi/2", got)
	}

	a.Tick(time.UnixMilli(45000), neverVisible)
	if got := a.SweepAngle(); !approxEqual(got, 3*math.Pi/2, 1e-6) {
		t.Errorf("SweepAngle at :45 = %f, want 3pi/2", got)
	}
}

func TestAnimatorPruneRemoved(t *testing.T) {
	a := NewTimerAnimator(DefaultAnimatorConfig())
	a.SetStatus("keep", StatusSending)
	a.SetStatus("drop", StatusSending)

	f := newFlatProj(800, 600, 14)
	a.PruneRemoved([]Entity{poiAtScreen(f, "keep", 100, 100)})

	if a.State("keep") == nil {
		t.Error("state for a live entity was pruned")
	}
	if a.State("drop") != nil {
		t.Error("state for a removed entity was kept")
	}
}
