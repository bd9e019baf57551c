// Package render draws reader views with gogpu/gg software rasterizer. It is
// used for snapshots and headless playback, window presentation is left to
// the caller.
package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/gogpu/gg"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"

	"lectern/anim"
	"lectern/book"
	"lectern/config"
	"lectern/markup"
	"lectern/pager"
	"lectern/utils/images"
)

// geometry of the window and book, pixels. Book is centered.
type geometry struct {
	width  float64
	height float64
	bookW  float64
	bookH  float64
	left   float64
	top    float64
	pageW  float64
	margin float64
}

func newGeometry(cfg *config.RenderConfig) geometry {
	g := geometry{width: float64(cfg.Width), height: float64(cfg.Height), margin: float64(cfg.Margin)}
	g.bookH = g.height * 0.9
	g.bookW = min(g.width*0.94, g.bookH*1.5)
	g.pageW = g.bookW / 2
	g.left = (g.width - g.bookW) / 2
	g.top = (g.height - g.bookH) / 2
	return g
}

func (g geometry) spine() float64 { return g.left + g.pageW }

// Canvas draws pager views into an off-screen image. It implements
// pager.Textures: decoded pictures are kept by path.
type Canvas struct {
	cfg   *config.RenderConfig
	log   *zap.Logger
	geo   geometry
	dc    *gg.Context
	pages [2]*gg.Context
	fonts *fonts

	background gg.RGBA
	cover      gg.RGBA
	paper      gg.RGBA
	ink        gg.RGBA

	images map[string]*image.NRGBA
	bufs   map[string]*gg.ImageBuf
	chrome map[anim.Surface]*gg.ImageBuf
	shadow *gg.ImageBuf

	styled *book.Book
	styles map[uint32]markup.Style

	err error
}

// New prepares canvas. Chrome holds SVG artwork for curl surfaces, shadow is
// SVG drop shadow of the turning page.
func New(cfg *config.RenderConfig, chrome map[anim.Surface][]byte, shadow []byte, log *zap.Logger) (*Canvas, error) {
	c := &Canvas{
		cfg:    cfg,
		log:    log.Named("render"),
		geo:    newGeometry(cfg),
		images: make(map[string]*image.NRGBA),
		bufs:   make(map[string]*gg.ImageBuf),
		chrome: make(map[anim.Surface]*gg.ImageBuf),
	}

	var err error
	for _, p := range []struct {
		dst  *gg.RGBA
		name string
	}{
		{&c.background, cfg.Background},
		{&c.cover, cfg.Cover},
		{&c.paper, cfg.Paper},
		{&c.ink, cfg.Ink},
	} {
		if *p.dst, err = parseColor(p.name); err != nil {
			return nil, err
		}
	}

	pw, ph := int(c.geo.pageW), int(c.geo.bookH)
	for s, data := range chrome {
		pic, err := images.RasterizeSVG(data, pw, ph, nil)
		if err != nil {
			return nil, fmt.Errorf("unable to rasterize %s surface: %w", s, err)
		}
		c.chrome[s] = gg.ImageBufFromImage(pic)
	}
	if len(shadow) > 0 {
		pic, err := images.RasterizeSVG(shadow, pw, ph, nil)
		if err != nil {
			return nil, fmt.Errorf("unable to rasterize page shadow: %w", err)
		}
		c.shadow = gg.ImageBufFromImage(pic)
	}

	if c.fonts, err = loadFonts(); err != nil {
		return nil, err
	}

	c.dc = gg.NewContext(cfg.Width, cfg.Height)
	for i := range c.pages {
		c.pages[i] = gg.NewContext(pw, ph)
	}
	c.log.Debug("Canvas ready", zap.Int("width", cfg.Width), zap.Int("height", cfg.Height), zap.Float64("page", c.geo.pageW))
	return c, nil
}

func parseColor(name string) (gg.RGBA, error) {
	if strings.HasPrefix(name, "#") {
		return gg.Hex(name), nil
	}
	cl, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return gg.RGBA{}, fmt.Errorf("unknown color %q", name)
	}
	return gg.FromColor(cl), nil
}

// Close releases drawing contexts and fonts.
func (c *Canvas) Close() error {
	err := c.dc.Close()
	for _, pc := range c.pages {
		err = multierr.Append(err, pc.Close())
	}
	return multierr.Append(err, c.fonts.close())
}

// Viewport returns geometry for controller hit testing.
func (c *Canvas) Viewport() pager.Viewport {
	return pager.Viewport{
		Width:      c.geo.width,
		Height:     c.geo.height,
		BookWidth:  c.geo.bookW,
		BookHeight: c.geo.bookH,
	}
}

// Upload keeps decoded image. Pixel buffer is referenced, not copied, so it
// stays alive after book releases it. Empty images are ignored.
func (c *Canvas) Upload(img *book.Image) {
	pic := img.NRGBA()
	if pic == nil {
		return
	}
	c.images[img.RelativePath] = pic
	delete(c.bufs, img.RelativePath)
	c.log.Debug("Image uploaded", zap.String("image", img.RelativePath), zap.Int("width", img.Width), zap.Int("height", img.Height))
}

// buf returns uploaded image converted for drawing, nil if it was never
// uploaded.
func (c *Canvas) buf(path string) *gg.ImageBuf {
	if b, ok := c.bufs[path]; ok {
		return b
	}
	pic, ok := c.images[path]
	if !ok {
		return nil
	}
	b := gg.ImageBufFromImage(pic)
	c.bufs[path] = b
	return b
}

// Image returns current frame.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// SavePNG writes current frame.
func (c *Canvas) SavePNG(path string) error {
	if err := c.dc.SavePNG(path); err != nil {
		return fmt.Errorf("unable to save snapshot: %w", err)
	}
	return nil
}

func (c *Canvas) fill(dc *gg.Context, x, y, w, h float64, col gg.RGBA, alpha float64) {
	if w <= 0 || h <= 0 || alpha <= 0 {
		return
	}
	dc.SetRGBA(col.R, col.G, col.B, col.A*alpha)
	dc.DrawRectangle(x, y, w, h)
	if err := dc.Fill(); err != nil {
		c.err = multierr.Append(c.err, err)
	}
}

func (c *Canvas) prepareStyles(b *book.Book) {
	if c.styled == b {
		return
	}
	c.styled = b
	c.styles = markup.ResolveTable(b.Styles())
}

// Draw renders a single frame.
func (c *Canvas) Draw(v *pager.View) error {
	c.err = nil
	c.dc.ClearWithColor(c.background)
	if v.Book == nil {
		return nil
	}
	c.prepareStyles(v.Book)

	if v.State >= pager.WritingMove {
		c.drawBack(v)
		return c.err
	}

	c.drawBackground(v)

	turning := -1
	if v.Curl.IsAnimating() {
		turning = c.turningPage(v)
	}
	var live *gg.ImageBuf
	for i, p := range v.Spread {
		if i >= len(c.pages) {
			break
		}
		pc := c.pages[i]
		c.drawPage(pc, v, i, p)
		buf := gg.ImageBufFromImage(pc.Image())
		if i == turning {
			live = buf
			continue
		}
		c.dc.DrawImage(buf, c.pageX(v, i), c.geo.top)
	}
	if v.Curl.IsAnimating() {
		c.drawCurl(v, live)
	}
	return c.err
}

// rightSide reports whether spread page i lies right of the spine. Page 0 is
// always shown on the right over the cover.
func rightSide(v *pager.View, i int) bool {
	return i == 1 || v.Cover()
}

func (c *Canvas) pageX(v *pager.View, i int) float64 {
	if rightSide(v, i) {
		return c.geo.spine()
	}
	return c.geo.left
}

// turningPage returns spread index of the page being turned, -1 when that
// side of the spread is empty.
func (c *Canvas) turningPage(v *pager.View) int {
	right := v.Curl.Direction() == anim.DirectionRight
	for i := range v.Spread {
		if rightSide(v, i) == right {
			return i
		}
	}
	return -1
}

func (c *Canvas) drawBackground(v *pager.View) {
	g := c.geo
	cover := v.Cover() || (v.Page == 1 && v.Curl.IsAnimating() && v.Curl.Direction() == anim.DirectionLeft)

	switch {
	case v.State == pager.WritingClose:
		// right page is turning onto the back cover
		c.fill(c.dc, g.left, g.top, g.pageW, g.bookH, c.paper, 1)
	case cover:
		c.fill(c.dc, g.left, g.top, g.pageW, g.bookH, c.cover, 1)
		c.fill(c.dc, g.spine(), g.top, g.pageW, g.bookH, c.paper, 1)
	default:
		if v.Background < 1 {
			c.fill(c.dc, g.left, g.top, g.pageW, g.bookH, c.cover, 1)
		}
		c.fill(c.dc, g.left, g.top, g.bookW, g.bookH, c.paper, v.Background)
		c.fill(c.dc, g.spine()-1, g.top, 2, g.bookH, c.ink, 0.15)
	}
}

// drawBack slides back cover from the left page position to the middle.
func (c *Canvas) drawBack(v *pager.View) {
	g := c.geo
	back := v.Book.Back
	if back == nil {
		return
	}
	back.Scale(g.pageW, g.bookH)
	w, h := float64(back.ScaledWidth), float64(back.ScaledHeight)
	x := g.left + v.Slide*w/2
	y := (g.height - h) / 2

	buf := c.buf(back.RelativePath)
	if buf == nil {
		c.fill(c.dc, x, g.top, g.pageW, g.bookH, c.cover, 1)
		return
	}
	c.dc.DrawImageEx(buf, gg.DrawImageOptions{X: x, Y: y, DstWidth: w, DstHeight: h, Opacity: 1})
}
