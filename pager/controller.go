package pager

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"lectern/anim"
	"lectern/book"
	"lectern/config"
)

// Animation durations, seconds.
const (
	headerDuration     = 1.0
	imageDuration      = 1.5
	moveDuration       = 1.0
	backgroundDuration = 1.0
	fadeDuration       = 1.5
)

// turn is page change committed when curl completes.
type turn struct {
	offset int
	close  bool
}

// Controller is the reading state machine. It owns reveal cursor and every
// animation of the open book and is advanced once per frame by Update.
type Controller struct {
	cfg       *config.ReaderConfig
	narration Narration
	textures  Textures
	log       *zap.Logger
	now       func() time.Time

	book     *book.Book
	uploaded bool

	currentPage int
	spread      []*book.Page
	pos         Position
	started     bool
	state       WritingState
	skipFirst   bool
	paused      bool

	revealer   *anim.Revealer
	text       string
	header     *anim.Ease
	image      *anim.Ease
	background *anim.Ease
	move       *anim.Ease
	fade       *anim.Ease
	curl       anim.Curl
	pending    *turn

	resetAudio bool
	doneAt     time.Time
	viewport   Viewport
	events     Events
}

// New creates controller without a book.
func New(cfg *config.ReaderConfig, narration Narration, textures Textures, log *zap.Logger) *Controller {
	return &Controller{
		cfg:       cfg,
		narration: narration,
		textures:  textures,
		log:       log.Named("pager"),
		now:       time.Now,
		revealer:  anim.NewRevealer(cfg.CharInterval),
		state:     WritingHeader,
	}
}

// SetBook installs hard loaded book and positions reader at page 0. Images
// are uploaded on the next Update.
func (c *Controller) SetBook(b *book.Book) {
	c.book = b
	c.currentPage = 0
	c.started = false
	c.uploaded = false
	if b == nil {
		c.spread = nil
		return
	}
	c.log.Debug("Book set", zap.String("title", b.Title), zap.Int("pages", len(b.Keys())))
	c.updatePages()
}

func (c *Controller) Book() *book.Book { return c.book }

// SetPage opens spread containing requested page. Spreads start at odd
// pages, so for even page the previous one is shown too and reveal starts
// directly at the requested page, unless previous page is only a picture
// which is then revealed as usual. Threaded is set when called outside of
// render goroutine, narration is then reset on next Update.
func (c *Controller) SetPage(index int, threaded bool) {
	if c.book == nil {
		return
	}

	key := index
	c.skipFirst = false
	if index != 0 && index%2 == 0 {
		key = index - 1
		if p, ok := c.book.Page(key); !ok || !p.HasImage() || len(p.Paragraphs) != 0 {
			c.skipFirst = true
		}
	}
	c.currentPage = c.resolve(key)
	if c.currentPage != key {
		c.skipFirst = false
	}
	c.log.Debug("Page set", zap.Int("requested", index), zap.Int("page", c.currentPage), zap.Bool("skip", c.skipFirst))
	c.reset(threaded)
}

// resolve returns largest existing page not greater than key, or the first
// page.
func (c *Controller) resolve(key int) int {
	keys := c.book.Keys()
	if len(keys) == 0 {
		return key
	}
	i, ok := slices.BinarySearch(keys, key)
	switch {
	case ok:
		return key
	case i == 0:
		return keys[0]
	}
	return keys[i-1]
}

func (c *Controller) reset(threaded bool) {
	c.fade = nil
	if threaded {
		c.resetAudio = true
	} else {
		c.narration.Reset()
	}
	c.curl.Stop(false)
	c.pending = nil
	c.paused = false
	c.started = false
	c.text = ""
	c.updatePages()
}

// updatePages collects current spread: page at current key and, unless it is
// page 0, the one following it.
func (c *Controller) updatePages() {
	spread := make([]*book.Page, 0, 2)
	keys := c.book.Keys()
	if i, ok := slices.BinarySearch(keys, c.currentPage); ok {
		spread = append(spread, c.book.Pages[keys[i]])
		if c.currentPage != 0 && i+1 < len(keys) {
			spread = append(spread, c.book.Pages[keys[i+1]])
		}
	}
	c.spread = spread
	c.startHeader()
}

func (c *Controller) startHeader() {
	c.state = WritingHeader
	c.header = anim.NewEase(0, 1, headerDuration)
}

func (c *Controller) startImage() {
	c.state = WritingImage
	c.image = anim.NewEase(0, 1, imageDuration)
}

// AdvancePage is the single user triggered transition. When spread is fully
// revealed or force is set it turns the page (back when reverse is set),
// otherwise it skips header fade or current paragraph. Turning while curl is
// still animating completes the pending turn immediately.
func (c *Controller) AdvancePage(force, reverse bool) {
	c.doneAt = time.Time{}
	c.skipFirst = false

	if c.book == nil || c.state >= WritingClose {
		return
	}

	switch {
	case c.state == WritingDone || force:
		c.turnPage(reverse)
	case c.state == WritingHeader:
		c.finishHeader()
	default:
		c.advanceParagraph()
	}
}

func (c *Controller) turnPage(reverse bool) {
	keys := c.book.Keys()
	i, _ := slices.BinarySearch(keys, c.currentPage)

	step := 2
	if c.currentPage == 0 || (reverse && i == 1 && keys[0] == 0) {
		step = 1
	}

	var target int
	if !reverse {
		if i+step >= len(keys) {
			c.close()
			return
		}
		target = keys[i+step]
	} else {
		if i == 0 {
			return
		}
		target = keys[max(i-step, 0)]
	}

	if c.curl.IsAnimating() {
		if c.curl.Stop(true) == anim.CurlCompleted {
			c.commit()
		}
		c.fade = nil
		return
	}

	dir := anim.DirectionRight
	if reverse {
		dir = anim.DirectionLeft
	}
	c.curl.Start(dir)
	c.pending = &turn{offset: target - c.currentPage}
	c.fade = anim.NewEase(0, 1, fadeDuration)
	c.log.Debug("Turning page", zap.Int("from", c.currentPage), zap.Int("to", target), zap.Stringer("direction", dir))
}

// close starts final curl onto back cover. Without back cover last spread
// stays as is.
func (c *Controller) close() {
	if c.book.Back == nil {
		return
	}
	c.state = WritingClose
	c.curl.Start(anim.DirectionRight)
	c.pending = &turn{close: true}
	c.log.Debug("Closing book", zap.Int("page", c.currentPage))
}

// commit applies turn started with the curl.
func (c *Controller) commit() {
	t := c.pending
	c.pending = nil
	if t == nil {
		return
	}

	if t.close {
		c.state = WritingMove
		c.move = anim.NewEase(0, 1, moveDuration)
		return
	}

	if c.currentPage == 0 {
		c.background = anim.NewEase(0, 1, backgroundDuration)
	}
	c.currentPage += t.offset
	c.reset(false)
	c.events |= EventTurned
}

func (c *Controller) finishHeader() {
	if c.started && c.pos.Page < len(c.spread) && len(c.spread[c.pos.Page].Paragraphs) == 0 {
		c.startImage()
	} else {
		c.state = WritingParagraph
	}
	c.header = nil
}

func (c *Controller) advanceParagraph() {
	if c.state == WritingHeader {
		c.state = WritingParagraph
		return
	}
	if !c.started || len(c.spread) == 0 {
		return
	}

	if c.pos.Page < len(c.spread) {
		p := c.spread[c.pos.Page]
		c.pos.Paragraph++
		if c.pos.Paragraph >= len(p.Paragraphs) && (!p.HasImage() || c.state == WritingImage) {
			c.pos.Page++
			c.pos.Paragraph = 0
			if c.pos.Page < len(c.spread) && c.spread[c.pos.Page].Title == "" {
				c.state = WritingParagraph
				c.header = nil
			} else {
				c.startHeader()
			}
		}
	}

	if c.pos.Page >= len(c.spread) || c.pos.Paragraph >= len(c.spread[c.pos.Page].Paragraphs) {
		c.narration.Stop()
		if c.pos.Page < len(c.spread) && c.spread[c.pos.Page].HasImage() {
			c.startImage()
		} else {
			c.finishPage()
		}
		c.log.Debug("Writing state changed", zap.Stringer("state", c.state))
		return
	}
	c.setText()
}

// setText starts reveal of paragraph under cursor paced by its narration.
func (c *Controller) setText() {
	p := c.spread[c.pos.Page]
	c.revealer.SetText(p.Paragraphs[c.pos.Paragraph], c.advanceAudio(p))
	c.text = ""
}

// advanceAudio loads narration for paragraph under cursor and returns its
// duration, -1 when there is none.
func (c *Controller) advanceAudio(p *book.Page) float64 {
	c.fade = nil
	if name := p.Sound(c.pos.Paragraph); name != "" {
		if d, ok := c.narration.Load(name); ok {
			return d
		}
	}
	c.narration.Reset()
	return -1
}

func (c *Controller) finishPage() {
	c.state = WritingDone
	c.events |= EventDone
	if c.cfg.Autoplay {
		c.doneAt = c.now()
	}
}

// Update advances every animation by dt seconds and returns what happened
// since previous call.
func (c *Controller) Update(dt float64) Events {
	if c.resetAudio {
		c.resetAudio = false
		c.narration.Reset()
	}
	if c.book == nil {
		return c.flush()
	}
	if !c.uploaded {
		c.upload()
	}

	if c.fade != nil {
		if v := c.fade.Advance(dt); v >= 1 {
			c.narration.Reset()
			c.fade = nil
		} else {
			c.narration.SetVolume(1 - v)
		}
	}

	if c.state >= WritingMove {
		if c.move != nil {
			c.move.Advance(dt)
			if c.move.Done() {
				c.state = WritingBack
				c.move = nil
				c.events |= EventClosed
			}
		}
		return c.flush()
	}

	if c.background != nil {
		c.background.Advance(dt)
		if c.background.Done() {
			c.background = nil
		}
	}

	if !c.started && len(c.spread) > 0 {
		c.started = true
		c.pos = Position{}
		if c.skipFirst && len(c.spread) > 1 {
			c.pos.Page++
		}
		if len(c.spread[c.pos.Page].Paragraphs) > 0 {
			c.setText()
		}
	}

	if c.started {
		c.reveal(dt)
	}

	if c.curl.IsAnimating() && c.curl.Advance(dt) == anim.CurlCompleted {
		c.commit()
	}

	if !c.doneAt.IsZero() && c.now().Sub(c.doneAt) > c.cfg.Delay() {
		c.AdvancePage(false, false)
	}
	return c.flush()
}

func (c *Controller) flush() Events {
	ev := c.events
	c.events = 0
	return ev
}

// upload hands decoded images to textures and drops pixel buffers.
func (c *Controller) upload() {
	c.uploaded = true
	if c.textures == nil {
		return
	}
	for _, img := range c.book.Images() {
		c.textures.Upload(img)
		img.Release()
	}
}

func (c *Controller) reveal(dt float64) {
	frozen := dt
	if c.paused {
		frozen = 0
	}

	switch c.state {
	case WritingHeader:
		if c.header != nil && c.header.Advance(dt) >= 1 {
			c.skipFirst = false
			c.finishHeader()
		}

	case WritingParagraph:
		if c.pos.Page >= len(c.spread) {
			return
		}
		p := c.spread[c.pos.Page]
		if c.pos.Paragraph >= len(p.Paragraphs) {
			// header finished before cursor was placed on a page without text
			c.advanceParagraph()
			return
		}
		first := c.revealer.Pos() == 0
		done, text := c.revealer.GetText(frozen)
		c.text = text
		if first && text != "" && !c.hidden(p) {
			c.narration.Play()
		}
		if done {
			c.advanceParagraph()
		}

	case WritingImage:
		if c.image == nil {
			return
		}
		c.image.Advance(frozen)
		if c.image.Done() {
			c.image = nil
			if c.pos.Page != 0 {
				c.finishPage()
			} else {
				c.advanceParagraph()
			}
		}
	}
}

// hidden reports page content which is not shown in streaming mode.
func (c *Controller) hidden(p *book.Page) bool {
	return c.cfg.StreamingMode && p.Spicy
}

// Back leaves the book.
func (c *Controller) Back() {
	c.narration.Reset()
	c.doneAt = time.Time{}
	c.events |= EventExit
}

// SetViewport updates geometry used by OnMouseClicked.
func (c *Controller) SetViewport(v Viewport) {
	c.viewport = v
}

// OnMouseClicked advances reveal when book is clicked and turns pages when
// click lands left or right of it. Once book is closed any click leaves it.
func (c *Controller) OnMouseClicked(x, y float64) {
	if c.state >= WritingClose {
		if c.state == WritingBack {
			c.Back()
		}
		return
	}

	v := c.viewport
	switch {
	case x > v.left() && x < v.right() && y > v.top() && y < v.bottom():
		c.AdvancePage(false, false)
	case x < v.left():
		c.AdvancePage(true, true)
	case x > v.right():
		c.AdvancePage(true, false)
	}
}

func (c *Controller) OnKeyClicked(k Key) {
	switch k {
	case KeySpace:
		c.AdvancePage(false, false)
	case KeyLeft:
		c.AdvancePage(true, true)
	case KeyRight:
		c.AdvancePage(true, false)
	case KeyEscape:
		c.Back()
	}
}

// SetPaused freezes reveal and image animation.
func (c *Controller) SetPaused(paused bool) {
	c.paused = paused
}

func (c *Controller) CurrentPage() int      { return c.currentPage }
func (c *Controller) Writing() WritingState { return c.state }
func (c *Controller) Position() Position    { return c.pos }
func (c *Controller) Paused() bool          { return c.paused }

// IsAnimating reports whether page turn is in progress.
func (c *Controller) IsAnimating() bool {
	return c.curl.IsAnimating()
}

// SetClock replaces wall clock used for autoplay delay. Headless playback
// runs on simulated time.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// LastSpread reports whether forward turn would close the book.
func (c *Controller) LastSpread() bool {
	if c.book == nil {
		return true
	}
	keys := c.book.Keys()
	i, _ := slices.BinarySearch(keys, c.currentPage)
	step := 2
	if c.currentPage == 0 {
		step = 1
	}
	return i+step >= len(keys)
}
