package tacmap

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// AnimatorConfig tunes the timer/status animation clock.
type AnimatorConfig struct {
	// CountdownInterval is how often logical countdown values refresh;
	// the tick itself runs faster for smooth glyph motion.
	CountdownInterval time.Duration
	// VisibilityCheckInterval throttles the "any timer glyphs on screen?"
	// probe that gates redraw requests.
	VisibilityCheckInterval time.Duration
	// FadeDuration is the delivered-status fade to transparent.
	FadeDuration time.Duration
	// RingDuration is the failed-status ring scale-up.
	RingDuration time.Duration
	// OrbitSpeed is the sending/retrying orbit rate in radians per second.
	OrbitSpeed float64
}

// DefaultAnimatorConfig returns the standard animation timings.
func DefaultAnimatorConfig() AnimatorConfig {
	return AnimatorConfig{
		CountdownInterval:       time.Second,
		VisibilityCheckInterval: 2 * time.Second,
		FadeDuration:            2500 * time.Millisecond,
		RingDuration:            2 * time.Second,
		OrbitSpeed:              2 * math.Pi, // one orbit per second
	}
}

// AnimationState is the per-entity animation snapshot the render pipeline
// reads. Mutated once per animator tick.
type AnimationState struct {
	FadeAlpha  float64
	RingScale  float64
	OrbitPhase float64
	Status     DeliveryStatus

	fade *gween.Tween
	ring *gween.Tween
	// terminalDone marks a finished terminal effect; the state is pruned
	// on the next tick.
	terminalDone bool
}

// TimerAnimator advances countdown, orbit, and fade animation for entities
// carrying an expiration or delivery status, and decides whether the frame
// needs a redraw at all. Continuous redraw is the single most expensive
// thing the overlay can ask for, so ticks are gated on there actually being
// a visible timer or active status effect.
type TimerAnimator struct {
	cfg AnimatorConfig

	states map[EntityID]*AnimationState

	sweepAngle    float64
	lastTick      time.Time
	countdownNow  time.Time
	lastVisCheck  time.Time
	visibleTimers bool
}

// NewTimerAnimator creates an animator. A zero config gets defaults.
func NewTimerAnimator(cfg AnimatorConfig) *TimerAnimator {
	def := DefaultAnimatorConfig()
	if cfg.CountdownInterval == 0 {
		cfg.CountdownInterval = def.CountdownInterval
	}
	if cfg.VisibilityCheckInterval == 0 {
		cfg.VisibilityCheckInterval = def.VisibilityCheckInterval
	}
	if cfg.FadeDuration == 0 {
		cfg.FadeDuration = def.FadeDuration
	}
	if cfg.RingDuration == 0 {
		cfg.RingDuration = def.RingDuration
	}
	if cfg.OrbitSpeed == 0 {
		cfg.OrbitSpeed = def.OrbitSpeed
	}
	return &TimerAnimator{
		cfg:    cfg,
		states: make(map[EntityID]*AnimationState),
	}
}

// SetStatus records a delivery-status transition for an entity and resets
// its animation accordingly. Re-entering the same sending/retrying status is
// a no-op; re-entering a terminal status restarts its effect.
func (t *TimerAnimator) SetStatus(id EntityID, status DeliveryStatus) {
	if status == StatusNone {
		delete(t.states, id)
		return
	}
	s := t.states[id]
	if s == nil {
		s = &AnimationState{FadeAlpha: 1, RingScale: 1}
		t.states[id] = s
	}
	if s.Status == status && !status.Terminal() {
		return
	}
	s.Status = status
	s.terminalDone = false
	s.fade = nil
	s.ring = nil
	s.FadeAlpha = 1
	s.RingScale = 1

	switch status {
	case StatusDelivered:
		s.fade = gween.New(1, 0, float32(t.cfg.FadeDuration.Seconds()), ease.OutQuad)
	case StatusFailed:
		s.ring = gween.New(1, 2.5, float32(t.cfg.RingDuration.Seconds()), ease.OutQuad)
	case StatusSending, StatusRetrying:
		// Steady orbit, no decay; phase continues from wherever it was.
	}
}

// State returns the animation snapshot for an entity, or nil.
func (t *TimerAnimator) State(id EntityID) *AnimationState {
	return t.states[id]
}

// EntityRemoved drops the animation state for a removed entity.
func (t *TimerAnimator) EntityRemoved(id EntityID) {
	delete(t.states, id)
}

// SweepAngle is the shared second-hand angle in radians, one revolution per
// minute, used by every countdown glyph.
func (t *TimerAnimator) SweepAngle() float64 { return t.sweepAngle }

// Tick advances all animation state. hasVisibleTimers is probed at most
// once per VisibilityCheckInterval; between probes the cached answer gates
// the redraw decision. Returns whether the display should be invalidated.
func (t *TimerAnimator) Tick(now time.Time, hasVisibleTimers func() bool) bool {
	var dt float64
	if !t.lastTick.IsZero() {
		dt = now.Sub(t.lastTick).Seconds()
	}
	t.lastTick = now

	// Sweep derives from wall clock rather than integrating dt, so glyphs
	// across the overlay stay in phase.
	t.sweepAngle = 2 * math.Pi * float64(now.UnixMilli()%60000) / 60000

	// Logical countdown values refresh once per second even though the
	// tick runs faster; the render pipeline reads CountdownNow.
	if t.countdownNow.IsZero() || now.Sub(t.countdownNow) >= t.cfg.CountdownInterval {
		t.countdownNow = now
	}

	statusActive := false
	for id, s := range t.states {
		if s.terminalDone {
			delete(t.states, id)
			continue
		}
		switch s.Status {
		case StatusSending, StatusRetrying:
			s.OrbitPhase = math.Mod(s.OrbitPhase+t.cfg.OrbitSpeed*dt, 2*math.Pi)
			statusActive = true
		case StatusDelivered:
			if s.fade != nil {
				val, done := s.fade.Update(float32(dt))
				s.FadeAlpha = float64(val)
				if done {
					s.terminalDone = true
				}
				statusActive = true
			}
		case StatusFailed:
			if s.ring != nil {
				val, done := s.ring.Update(float32(dt))
				s.RingScale = float64(val)
				if done {
					s.ring = nil // settle at final scale, keep the glyph
				}
				statusActive = true
			}
		}
	}

	// Status effects animate regardless of the timer visibility gate; they
	// were just triggered by a user action and must be seen.
	if statusActive {
		return true
	}

	if now.Sub(t.lastVisCheck) >= t.cfg.VisibilityCheckInterval {
		t.lastVisCheck = now
		t.visibleTimers = hasVisibleTimers()
	}
	// The sweep hand moves every tick, so any visible timer glyph means a
	// redraw; no visible timers means the tick is free.
	return t.visibleTimers
}

// CountdownNow is the once-per-second timestamp countdown glyphs are
// rendered against.
func (t *TimerAnimator) CountdownNow() time.Time { return t.countdownNow }

// PruneRemoved drops animation state for entities no longer in the set.
func (t *TimerAnimator) PruneRemoved(entities []Entity) {
	if len(t.states) == 0 {
		return
	}
	live := make(map[EntityID]struct{}, len(entities))
	for _, e := range entities {
		live[e.Ref().ID] = struct{}{}
	}
	for id := range t.states {
		if _, stillHere := live[id]; !stillHere {
			delete(t.states, id)
		}
	}
}
