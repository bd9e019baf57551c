package book

import (
	"fmt"
	"strconv"
	"strings"

	"lectern/markup"
)

// PageType controls layout of the page.
type PageType int

const (
	PagePoem PageType = iota
	PageForeword
	PageStory
)

func (t PageType) String() string {
	switch t {
	case PagePoem:
		return "Poem"
	case PageForeword:
		return "Foreword"
	case PageStory:
		return "Story"
	}
	return "PageType(" + strconv.Itoa(int(t)) + ")"
}

// ParsePageType accepts type names used by content files. Both historical
// "Foreward" and "Foreword" spellings are recognized, empty name means Poem.
func ParsePageType(name string) (PageType, error) {
	switch strings.ToLower(name) {
	case "", "poem":
		return PagePoem, nil
	case "foreword", "foreward":
		return PageForeword, nil
	case "story":
		return PageStory, nil
	}
	return PagePoem, fmt.Errorf("unknown page type %q", name)
}

// Page is a single page of the book. After Hard load paragraphs hold text
// with markup stripped and Spans is keyed by paragraph index.
type Page struct {
	Type       PageType
	Number     *int
	Title      string
	Date       string
	Paragraphs []string
	Image      *Image
	Font       string
	TitleStyle string
	TitleFont  markup.FontStyle
	Sounds     []string
	Spicy      bool

	Spans        map[int][]markup.Span
	Permutations markup.Table
}

// Header returns entry header: "#N — Title" for numbered entries, just title
// otherwise. Empty when page does not start an entry.
func (p *Page) Header() string {
	if p.Title == "" {
		return ""
	}
	if p.Number != nil {
		return fmt.Sprintf("#%d — %s", *p.Number, p.Title)
	}
	return p.Title
}

// HeaderLine is Header followed by the date in parentheses when present.
func (p *Page) HeaderLine() string {
	h := p.Header()
	if h == "" || p.Date == "" {
		return h
	}
	return h + " (" + p.Date + ")"
}

// HasImage reports whether page references a picture.
func (p *Page) HasImage() bool {
	return p.Image != nil
}

// Sound returns narration resource for paragraph, empty if there is none.
func (p *Page) Sound(paragraph int) string {
	if paragraph < 0 || paragraph >= len(p.Sounds) {
		return ""
	}
	return p.Sounds[paragraph]
}
