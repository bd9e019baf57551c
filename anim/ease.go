// Package anim contains frame driven animation primitives: easing curves,
// progressive text reveal and page curl.
//
// Nothing here reads a clock. Every primitive is advanced explicitly with the
// time elapsed since previous frame (in seconds) and is meant to be owned and
// touched by a single render goroutine.
package anim

// Ease is cubic ease-in interpolation.
//
// Note that end is used as a coefficient and not as a target: after duration
// elapsed Value is start+end. Callers animating 0..1 pass (0, 1, d). Elapsed
// time is never clamped, use Done to detect completion.
type Ease struct {
	start    float64
	end      float64
	duration float64
	passed   float64
	value    float64
}

func NewEase(start, end, duration float64) *Ease {
	return &Ease{start: start, end: end, duration: duration, value: start}
}

// Advance accumulates dt and returns new value.
func (e *Ease) Advance(dt float64) float64 {
	e.passed += dt
	x := 1.0
	if e.duration > 0 {
		x = e.passed / e.duration
	}
	e.value = e.start + x*x*x*e.end
	return e.value
}

func (e *Ease) Value() float64 { return e.value }
func (e *Ease) Start() float64 { return e.start }
func (e *Ease) End() float64   { return e.end }

// Done reports whether curve reached its end value.
func (e *Ease) Done() bool {
	return e.value >= e.end
}
