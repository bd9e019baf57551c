package engine

import (
	"fmt"

	"go.uber.org/zap"

	"lectern/book"
	"lectern/library"
)

// ListKind selects which menu list is shown.
type ListKind int

const (
	ListBooks ListKind = iota
	ListSettings
	ListBookPages
)

func (k ListKind) String() string {
	switch k {
	case ListBooks:
		return "books"
	case ListSettings:
		return "settings"
	case ListBookPages:
		return "pages"
	}
	return fmt.Sprintf("ListKind(%d)", int(k))
}

// Setting is a single toggle in settings list.
type Setting struct {
	Key   string
	Label string
	Hint  string
	Value bool
}

// PageItem is a book page which could be opened from the menu.
type PageItem struct {
	Label string
	Key   int
}

// List is current menu content. Only fields of its Kind are set.
type List struct {
	Kind ListKind

	// ListBooks
	Books []*library.Entry
	// ListSettings
	Settings []Setting
	// ListBookPages
	Entry *library.Entry
	Pages []PageItem

	cover    *book.Image
	teardown func()
}

// Settings keys.
const (
	SettingAudio     = "audio"
	SettingStreaming = "streaming"
	SettingAutoplay  = "autoplay"
)

// pageItems lists pages starting an entry and forewords.
func pageItems(b *book.Book) []PageItem {
	var items []PageItem
	for _, k := range b.Keys() {
		p, _ := b.Page(k)
		switch {
		case p.Title != "":
			items = append(items, PageItem{Label: p.Header(), Key: k})
		case p.Type == book.PageForeword:
			items = append(items, PageItem{Label: "Foreword", Key: k})
		}
	}
	return items
}

// setList replaces current list running teardown of the previous one. Must
// be called with e.mu held.
func (e *Engine) setList(l *List) {
	if e.list == l {
		return
	}
	if e.list != nil && e.list.teardown != nil {
		e.list.teardown()
	}
	e.list = l
	if l != nil {
		if l.Kind == ListBookPages {
			e.cover = l.cover
		}
		e.log.Debug("Menu list", zap.Stringer("kind", l.Kind))
	}
}

func (e *Engine) booksList() *List {
	return &List{Kind: ListBooks, Books: e.lib.Entries()}
}

func (e *Engine) settingsList() *List {
	return &List{Kind: ListSettings, Settings: []Setting{
		{Key: SettingAudio, Label: "Audio", Hint: "Toggles voiceover readings of poems and stories", Value: e.narrator.Enabled()},
		{Key: SettingStreaming, Label: "Streaming Mode", Hint: "Hides spicier stories and images", Value: e.cfg.Reader.StreamingMode},
		{Key: SettingAutoplay, Label: "Autoplay", Hint: "Turns the pages of the books for you", Value: e.cfg.Reader.Autoplay},
	}}
}

// pagesList builds page list from soft loaded entry. Front cover is decoded
// for the list and released when list is replaced.
func (e *Engine) pagesList(entry *library.Entry) *List {
	l := &List{Kind: ListBookPages, Entry: entry, Pages: pageItems(entry.Book)}
	cover := e.lib.Cover(entry, &e.cfg.Content)
	if cover != nil {
		l.cover = cover
		l.teardown = func() {
			cover.Release()
			if e.cover == cover {
				e.cover = nil
			}
		}
	}
	return l
}

// ShowBooks switches menu to the list of books.
func (e *Engine) ShowBooks() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setList(e.booksList())
}

// ShowSettings switches menu to settings.
func (e *Engine) ShowSettings() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setList(e.settingsList())
}

// ShowPages switches menu to the page list of entry.
func (e *Engine) ShowPages(entry *library.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setList(e.pagesList(entry))
}

// List returns current menu list.
func (e *Engine) List() *List {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.list
}

// Cover returns front cover decoded for the page list, nil otherwise.
func (e *Engine) Cover() *book.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cover
}

// Toggle flips setting and refreshes settings list. Settings are kept for
// the session only.
func (e *Engine) Toggle(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch key {
	case SettingAudio:
		e.narrator.SetEnabled(!e.narrator.Enabled())
		e.cfg.Reader.Audio = e.narrator.Enabled()
	case SettingStreaming:
		e.cfg.Reader.StreamingMode = !e.cfg.Reader.StreamingMode
	case SettingAutoplay:
		e.cfg.Reader.Autoplay = !e.cfg.Reader.Autoplay
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	e.log.Debug("Setting changed", zap.String("key", key))
	if e.list != nil && e.list.Kind == ListSettings {
		e.setList(e.settingsList())
	}
	return nil
}
