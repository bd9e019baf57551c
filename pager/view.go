package pager

import (
	"lectern/anim"
	"lectern/book"
)

// View is a snapshot of controller state for a single frame. It shares
// pages with the book, renderer must not modify them.
type View struct {
	Book      *book.Book
	Page      int
	Spread    []*book.Page
	Pos       Position
	Started   bool
	State     WritingState
	SkipFirst bool
	Streaming bool

	// Text is visible prefix of paragraph under cursor.
	Text string
	// HeaderAlpha is header fade, 1 outside of Header state.
	HeaderAlpha float64
	// ImageReveal is radius of reveal circle relative to image height.
	ImageReveal float64
	// Background is cross-fade from cover background after leaving page 0,
	// 1 when settled.
	Background float64
	// Slide is back cover slide-in progress.
	Slide float64

	Curl anim.Curl
}

// View returns current snapshot.
func (c *Controller) View() View {
	v := View{
		Book:        c.book,
		Page:        c.currentPage,
		Spread:      c.spread,
		Pos:         c.pos,
		Started:     c.started,
		State:       c.state,
		SkipFirst:   c.skipFirst,
		Streaming:   c.cfg.StreamingMode,
		Text:        c.text,
		HeaderAlpha: 1,
		Background:  1,
		Slide:       1,
		Curl:        c.curl,
	}
	if c.state == WritingHeader && c.header != nil {
		v.HeaderAlpha = min(c.header.Value(), 1)
	}
	if c.image != nil {
		v.ImageReveal = min(c.image.Value(), 1)
	}
	if c.background != nil {
		v.Background = min(c.background.Value(), 1)
	}
	if c.state == WritingClose {
		v.Slide = 0
	} else if c.move != nil {
		v.Slide = min(c.move.Value(), 1)
	}
	return v
}

// Cover reports whether spread is the single page 0 shown over the cover
// background.
func (v *View) Cover() bool {
	return v.Page == 0
}

// Paragraph returns text to draw for paragraph p of spread page i, false when
// it is not revealed yet.
func (v *View) Paragraph(i, p int) (string, bool) {
	if !v.Started || i >= len(v.Spread) || p >= len(v.Spread[i].Paragraphs) {
		return "", false
	}
	switch {
	case i > v.Pos.Page:
		return "", false
	case i == v.Pos.Page && v.State == WritingHeader:
		return "", false
	case i == v.Pos.Page && p > v.Pos.Paragraph:
		return "", false
	case i == v.Pos.Page && p == v.Pos.Paragraph && v.State == WritingParagraph:
		return v.Text, true
	}
	return v.Spread[i].Paragraphs[p], true
}

// ParagraphAlpha is opacity of revealed paragraphs. Pages skipped when
// opening the book in the middle fade in with the header.
func (v *View) ParagraphAlpha() float64 {
	if v.SkipFirst {
		return v.HeaderAlpha
	}
	return 1
}

// HeaderVisible reports whether title of spread page i is drawn and with
// which opacity.
func (v *View) HeaderVisible(i int) (float64, bool) {
	if i >= len(v.Spread) || v.Spread[i].Title == "" {
		return 0, false
	}
	if v.Started && i > v.Pos.Page {
		return 0, false
	}
	if v.State == WritingHeader && (i == v.Pos.Page || v.SkipFirst) {
		return v.HeaderAlpha, true
	}
	return 1, true
}

// NumberAlpha is opacity of page numbers.
func (v *View) NumberAlpha() float64 {
	if v.State == WritingHeader && (v.Pos.Page == 0 || v.SkipFirst) {
		return v.HeaderAlpha
	}
	return 1
}

// PageNumber is printed number of spread page i.
func (v *View) PageNumber(i int) int {
	return v.Page + i + 1
}

// ImageVisible reports whether image of spread page i is drawn and whether it
// is being revealed right now.
func (v *View) ImageVisible(i int) (visible, revealing bool) {
	if !v.Started || i >= len(v.Spread) || !v.Spread[i].HasImage() {
		return false, false
	}
	switch {
	case i < v.Pos.Page:
		return true, false
	case i > v.Pos.Page:
		return false, false
	case v.State == WritingImage:
		return true, true
	case v.State >= WritingDone:
		return true, false
	}
	return false, false
}

// Hidden reports whether content of spread page i must be blacked out.
func (v *View) Hidden(i int) bool {
	return v.Streaming && i < len(v.Spread) && v.Spread[i].Spicy
}
