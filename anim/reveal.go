package anim

import "unicode/utf8"

// DefaultCharInterval is time (in seconds) between revealed characters when
// reveal is not paced by narration.
const DefaultCharInterval = 0.05

// Revealer paces character by character reveal of a single paragraph.
type Revealer struct {
	text     string
	size     int
	pos      int
	accum    float64
	interval float64
	fixed    float64
	set      bool
}

// NewRevealer returns revealer using charInterval for unpaced text,
// non-positive value selects DefaultCharInterval.
func NewRevealer(charInterval float64) *Revealer {
	if charInterval <= 0 {
		charInterval = DefaultCharInterval
	}
	return &Revealer{fixed: charInterval}
}

// SetText restarts reveal with new text. When total is not negative the whole
// text is revealed over total seconds, otherwise every visible character takes
// fixed interval.
func (r *Revealer) SetText(text string, total float64) {
	r.text = text
	r.pos = 0
	r.accum = 0
	r.set = true
	r.size = visibleSize(text)

	r.interval = r.fixed
	if total >= 0 && r.size > 0 {
		r.interval = total / float64(r.size)
	}
}

// GetText advances reveal by dt and returns whether the whole text is visible
// together with currently visible prefix. Zero dt freezes reveal. Several
// characters could be revealed by a single call when dt spans more than one
// interval.
func (r *Revealer) GetText(dt float64) (bool, string) {
	if !r.set {
		return false, ""
	}

	r.accum += dt
	for r.pos < len(r.text) && r.accum >= r.interval {
		r.pos = nextVisible(r.text, r.pos)
		r.accum -= r.interval
	}
	return r.pos == len(r.text), r.text[:r.pos]
}

// Pos returns byte offset of the end of visible prefix.
func (r *Revealer) Pos() int { return r.pos }

// Size returns number of visible characters in current text.
func (r *Revealer) Size() int { return r.size }

// Interval returns per-character interval for current text.
func (r *Revealer) Interval() float64 { return r.interval }

// visibleSize counts characters: every byte which is not a UTF-8 continuation
// byte starts new visible character. Encoding is not validated.
func visibleSize(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if utf8.RuneStart(s[i]) {
			n++
		}
	}
	return n
}

func nextVisible(s string, pos int) int {
	pos++
	for pos < len(s) && !utf8.RuneStart(s[pos]) {
		pos++
	}
	return pos
}
