// Package engine ties library, reader controller and narration together and
// swaps books loaded in background.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lectern/audio"
	"lectern/book"
	"lectern/config"
	"lectern/library"
	"lectern/pager"
)

// State is what is on screen.
type State int

const (
	StateMenu State = iota
	StateLoading
	StateBook
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateLoading:
		return "loading"
	case StateBook:
		return "book"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrLoadPending is returned by Open while previous book is still loading.
var ErrLoadPending = errors.New("book load is pending")

// Engine owns reader state. Tick is expected to be called from a single
// render goroutine, everything else may be called from anywhere.
type Engine struct {
	cfg      *config.Config
	lib      *library.Library
	narrator *audio.Narrator
	ctrl     *pager.Controller
	log      *zap.Logger

	// mu guards book installation against Tick and menu state
	mu     sync.Mutex
	state  State
	active *library.Entry
	list   *List
	cover  *book.Image
	err    error

	loaded  atomic.Bool
	pending atomic.Bool
	wg      sync.WaitGroup
}

// New creates engine showing list of books.
func New(cfg *config.Config, lib *library.Library, narrator *audio.Narrator, textures pager.Textures, log *zap.Logger) *Engine {
	e := &Engine{
		cfg:      cfg,
		lib:      lib,
		narrator: narrator,
		ctrl:     pager.New(&cfg.Reader, narrator, textures, log),
		log:      log.Named("engine"),
	}
	e.loaded.Store(true)
	e.list = e.booksList()
	return e
}

// Controller returns reader controller. It must only be used from the
// goroutine calling Tick.
func (e *Engine) Controller() *pager.Controller {
	return e.ctrl
}

// State returns current screen.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Loaded reports whether there is no load in flight.
func (e *Engine) Loaded() bool {
	return e.loaded.Load()
}

// Err returns reason the last load failed, nil otherwise.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Open shows page of the entry. Book already on the reader is reused,
// otherwise it is loaded in background and engine stays in Loading state
// until it is installed. Second request while load is in flight is
// rejected with ErrLoadPending.
func (e *Engine) Open(entry *library.Entry, page int) error {
	if !e.pending.CompareAndSwap(false, true) {
		return ErrLoadPending
	}

	e.mu.Lock()
	if sameEntry(e.active, entry) && e.ctrl.Book() != nil {
		e.ctrl.SetPage(page, false)
		e.state = StateBook
		e.setList(nil)
		e.mu.Unlock()
		e.pending.Store(false)
		e.log.Debug("Book reopened", zap.String("book", entry.Title()), zap.Int("page", page))
		return nil
	}
	e.loaded.Store(false)
	e.state = StateLoading
	e.err = nil
	e.mu.Unlock()

	ticket := uuid.NewString()
	log := e.log.With(zap.String("ticket", ticket))
	log.Info("Loading book", zap.String("book", entry.Title()), zap.Int("page", page))

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.pending.Store(false)

		b := entry.Load(book.Hard, &e.cfg.Content, log)
		e.loaded.Store(true)

		e.mu.Lock()
		defer e.mu.Unlock()
		if !b.Valid() {
			e.err = fmt.Errorf("unable to load %q: %w", entry.Title(), b.Err())
			e.state = StateMenu
			e.setList(e.pagesList(entry))
			log.Warn("Book load failed", zap.Error(b.Err()))
			return
		}
		e.narrator.SetResources(entry.Source.ResourceFS())
		e.ctrl.SetBook(b)
		e.ctrl.SetPage(page, true)
		e.active = entry
		e.state = StateBook
		e.setList(nil)
		log.Info("Book installed", zap.Int("pages", len(b.Keys())))
	}()
	return nil
}

// sameEntry matches entries by content file location, library may be
// rescanned between calls.
func sameEntry(a, b *library.Entry) bool {
	if a == nil || b == nil {
		return false
	}
	return a == b || (a.Bundle == b.Bundle && a.Source.Name == b.Source.Name && a.Title() == b.Title())
}

// Wait blocks until load in flight, if any, is installed.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Tick advances reader by dt seconds. Leaving the book returns menu to its
// page list.
func (e *Engine) Tick(dt float64) pager.Events {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateBook {
		return 0
	}
	ev := e.ctrl.Update(dt)
	if ev.Has(pager.EventExit) {
		e.state = StateMenu
		if e.active != nil {
			e.setList(e.pagesList(e.active))
		} else {
			e.setList(e.booksList())
		}
		e.log.Debug("Back to menu")
	}
	return ev
}

// View returns reader snapshot taken under the same lock Tick uses.
func (e *Engine) View() pager.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.View()
}

// Close waits for pending load and drops menu resources.
func (e *Engine) Close() {
	e.Wait()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setList(nil)
	e.narrator.Reset()
}
