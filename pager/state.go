// Package pager drives reading of a single book: which spread is shown, how
// its headers, paragraphs and images are revealed, and when pages are turned.
//
// Controller is not safe for concurrent use. Everything, including Update, is
// expected to be called from the render goroutine or under a lock shared with
// it.
package pager

import (
	"fmt"

	"lectern/book"
)

// WritingState is a phase of spread reveal. Order matters, states after Done
// belong to closing the book.
type WritingState int

const (
	WritingHeader WritingState = iota
	WritingParagraph
	WritingImage
	WritingDone
	WritingClose
	WritingMove
	WritingBack
)

var writingStateNames = [...]string{"Header", "Paragraph", "Image", "Done", "Close", "Move", "Back"}

func (s WritingState) String() string {
	if s < 0 || int(s) >= len(writingStateNames) {
		return fmt.Sprintf("WritingState(%d)", int(s))
	}
	return writingStateNames[s]
}

// Key is keyboard input controller reacts to.
type Key int

const (
	KeySpace Key = iota
	KeyLeft
	KeyRight
	KeyEscape
)

// Events are reported by Update, several could be combined.
type Events uint

const (
	// EventTurned - new spread is shown.
	EventTurned Events = 1 << iota
	// EventDone - current spread is fully revealed.
	EventDone
	// EventClosed - back cover is in place.
	EventClosed
	// EventExit - reader asked to leave the book.
	EventExit
)

func (e Events) Has(ev Events) bool { return e&ev != 0 }

// Position is reveal cursor: page within spread and paragraph within page.
// Page could be past the end of spread when everything has been revealed.
type Position struct {
	Page      int
	Paragraph int
}

// Narration is the audio side of paragraph reveal.
type Narration interface {
	// Load prepares clip and returns its duration in seconds, false if
	// there is nothing to play.
	Load(name string) (float64, bool)
	Play()
	Stop()
	// Reset stops and forgets current clip.
	Reset()
	SetVolume(volume float64)
}

// Textures receives decoded images once per book. Pixel buffers are released
// after upload, images are addressed by their relative path afterwards.
type Textures interface {
	Upload(img *book.Image)
}

// Viewport is window and book background geometry used for hit testing.
// Book is centered in the window.
type Viewport struct {
	Width      float64
	Height     float64
	BookWidth  float64
	BookHeight float64
}

func (v Viewport) left() float64   { return v.Width/2 - v.BookWidth/2 }
func (v Viewport) right() float64  { return v.Width/2 + v.BookWidth/2 }
func (v Viewport) top() float64    { return v.Height/2 - v.BookHeight/2 }
func (v Viewport) bottom() float64 { return v.Height/2 + v.BookHeight/2 }
