package anim

import (
	"fmt"
	"math"
)

// Direction of page turn. Right turns forward (right page travels over the
// spine to the left), Left turns back.
type Direction int

const (
	DirectionLeft Direction = iota
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// CurlState is a phase of page turn.
type CurlState int

const (
	// CurlNone - idle.
	CurlNone CurlState = iota
	// CurlFirstHalf - page is lifted, angle grows toward 90 degrees.
	CurlFirstHalf
	// CurlSecondHalf - page is folding down on the other side, angle shrinks toward 0.
	CurlSecondHalf
)

func (s CurlState) String() string {
	switch s {
	case CurlNone:
		return "none"
	case CurlFirstHalf:
		return "first-half"
	case CurlSecondHalf:
		return "second-half"
	}
	return fmt.Sprintf("CurlState(%d)", int(s))
}

// CurlEvent is reported by Advance and Stop.
type CurlEvent int

const (
	CurlContinue CurlEvent = iota
	// CurlHalfway is reported once when page passes vertical position.
	CurlHalfway
	// CurlCompleted is reported exactly once per Start.
	CurlCompleted
)

// Surface is what should be drawn on the turning page.
type Surface int

const (
	// SurfaceLive - current page content (first half only).
	SurfaceLive Surface = iota
	SurfaceBackCover
	SurfaceEmptyLeft
	SurfaceMiddleLeft
	SurfaceOccupiedLeft
	SurfaceBlankRight
)

var surfaceNames = [...]string{"live", "back-cover", "empty-left", "middle-left", "occupied-left", "blank-right"}

func (s Surface) String() string {
	if s < 0 || int(s) >= len(surfaceNames) {
		return fmt.Sprintf("Surface(%d)", int(s))
	}
	return surfaceNames[s]
}

const (
	curlSeed      = 1.0
	curlStep      = 0.0015
	curlRate      = 0.01
	curlHalfway   = 90.0
	curlShadowLag = 5.0
	degToRad      = math.Pi / 180.0
)

// Curl animates a single page turn. Angle grows exponentially from small seed
// to 90 degrees, then decays exponentially until 1 degree and linearly after
// that. One extra frame is spent at zero angle so that the final folded
// position is drawn before completion is reported.
type Curl struct {
	state    CurlState
	dir      Direction
	angle    float64
	armed    bool
	finalHit bool
}

func (c *Curl) Start(dir Direction) {
	c.dir = dir
	c.angle = 0
	c.state = CurlFirstHalf
	c.armed = true
	c.finalHit = false
}

// Stop terminates animation immediately. When complete is set and completion
// for current Start has not been reported yet CurlCompleted is returned.
func (c *Curl) Stop(complete bool) CurlEvent {
	c.state = CurlNone
	armed := c.armed
	c.armed = false
	if complete && armed {
		return CurlCompleted
	}
	return CurlContinue
}

// Advance moves animation by dt seconds.
func (c *Curl) Advance(dt float64) CurlEvent {
	if c.state == CurlNone {
		return CurlContinue
	}

	if c.angle == 0 && c.state == CurlFirstHalf {
		c.angle = curlSeed
	}

	factor := (dt / curlStep) * curlRate
	if c.state == CurlFirstHalf {
		c.angle *= 1 + factor
	} else {
		if c.angle > 1 {
			c.angle /= 1 + factor
		} else {
			c.angle -= factor
		}
		if c.angle < 0 {
			c.angle = 0
		}
	}

	switch {
	case c.angle >= curlHalfway:
		if c.state == CurlFirstHalf {
			c.state = CurlSecondHalf
			return CurlHalfway
		}
	case c.angle <= 0 && c.state == CurlSecondHalf:
		if !c.finalHit {
			c.finalHit = true
			return CurlContinue
		}
		c.state = CurlNone
		if c.armed {
			c.armed = false
			return CurlCompleted
		}
	}
	return CurlContinue
}

func (c *Curl) IsAnimating() bool    { return c.state != CurlNone }
func (c *Curl) State() CurlState     { return c.state }
func (c *Curl) Direction() Direction { return c.dir }
func (c *Curl) Angle() float64       { return c.angle }

// FrameParams describes what is being turned.
type FrameParams struct {
	// Width of a single page in pixels.
	Width float64
	// Cover is set when turn involves the cover spread.
	Cover bool
	// Foreword is set when page revealed by the turn is a foreword.
	Foreword bool
	// BackCover is set when turning onto back cover.
	BackCover bool
}

// CurlFrame is geometry of the turning page for a single frame.
type CurlFrame struct {
	State     CurlState
	Direction Direction

	// Angle of the page around the spine, degrees.
	Angle float64
	// Rotation is the angle to rotate page around vertical axis through the
	// spine, 0 is flat on the right side, 180 is flat on the left.
	Rotation float64
	// Projection is the visible horizontal fraction of page width after
	// rotation, always in [0, 1].
	Projection float64

	ShadowAngle    float64
	ShadowRotation float64
	ShadowOpacity  float64
	// ShadowTexStart and ShadowTexEnd select horizontal range of shadow
	// texture as fractions.
	ShadowTexStart float64
	ShadowTexEnd   float64
	// ShadowWidth is width of shadow quad in pixels.
	ShadowWidth float64

	// ClipX and ClipWidth select the horizontal band of live page content
	// which is still visible, pixels. Only meaningful for SurfaceLive.
	ClipX     float64
	ClipWidth float64

	Surface Surface
}

// Frame computes geometry for current angle.
func (c *Curl) Frame(p FrameParams) CurlFrame {
	f := CurlFrame{
		State:       c.state,
		Direction:   c.dir,
		Angle:       c.angle,
		ShadowAngle: c.angle - curlShadowLag,
	}

	sin := math.Sin(c.angle * degToRad)
	f.ShadowOpacity = min(max(sin*2, 0), 1)
	f.ShadowTexStart = f.ShadowAngle / curlHalfway
	f.ShadowTexEnd = 1 - f.ShadowAngle/curlHalfway
	f.ShadowWidth = p.Width * (1 - f.ShadowAngle/curlHalfway)
	f.Projection = math.Abs(math.Cos(c.angle * degToRad))

	if c.state != CurlSecondHalf {
		f.Surface = SurfaceLive
		if c.dir == DirectionRight {
			f.Rotation = c.angle
			f.ShadowRotation = f.ShadowAngle
			f.ClipX, f.ClipWidth = 0, p.Width*(1-sin)
		} else {
			f.Rotation = 180 - c.angle
			f.ShadowRotation = 180 - f.ShadowAngle
			f.ClipX, f.ClipWidth = p.Width*sin, p.Width*(1-sin)
		}
		return f
	}

	if c.dir == DirectionRight {
		f.Rotation = 180 - c.angle
		f.ShadowRotation = 180 - f.ShadowAngle
	} else {
		f.Rotation = c.angle
		f.ShadowRotation = f.ShadowAngle
	}
	switch {
	case p.BackCover:
		f.Surface = SurfaceBackCover
	case p.Cover && p.Foreword:
		f.Surface = SurfaceEmptyLeft
	case p.Cover:
		f.Surface = SurfaceMiddleLeft
	case c.dir == DirectionRight:
		f.Surface = SurfaceOccupiedLeft
	default:
		f.Surface = SurfaceBlankRight
	}
	return f
}
