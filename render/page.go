package render

import (
	"image"
	"strconv"

	"github.com/gogpu/gg"
	"go.uber.org/zap"

	"lectern/anim"
	"lectern/book"
	"lectern/markup"
	"lectern/pager"
)

const (
	headerScale  = 1.4
	numberScale  = 0.7
	minFontScale = 0.6
	lineSpacing  = 1.25
	paragraphGap = 0.6
	// part of the page kept for picture under text
	imageShare = 0.4
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

func (a align) x(left, width, lineWidth float64) float64 {
	switch a {
	case alignCenter:
		return left + (width-lineWidth)/2
	case alignRight:
		return left + width - lineWidth
	}
	return left
}

// paragraphAlign returns alignment of paragraph k on a page of type t. Poem
// stanzas alternate sides.
func paragraphAlign(t book.PageType, k int) align {
	switch t {
	case book.PageForeword:
		return alignCenter
	case book.PagePoem:
		if k%2 == 1 {
			return alignRight
		}
	}
	return alignLeft
}

// pageText is paragraphs of a page laid out with a single font size.
type pageText struct {
	size   float64
	fam    family
	blocks []block
	height float64
}

func (c *Canvas) layoutText(p *book.Page, size, width float64) pageText {
	fam := c.fonts.family(p.Font)
	pt := pageText{size: size, fam: fam}
	measure := func(st markup.Style, s string) float64 {
		return fam.face(st.Font, size).Advance(s)
	}
	lineHeight := size * lineSpacing
	base := markup.Style{Font: markup.FontStyleRegular}
	for k, para := range p.Paragraphs {
		var ranges [][2]int
		if p.Type == book.PagePoem {
			ranges = splitLines(para)
		} else {
			ranges = wrapLines(para, fam.face(base.Font, size), width)
		}
		b := layout(para, ranges, p.Spans[k], c.styles, base, lineHeight, measure)
		pt.blocks = append(pt.blocks, b)
		pt.height += b.height
		if k > 0 {
			pt.height += size * paragraphGap
		}
	}
	return pt
}

// fitText shrinks font until paragraphs fit into the box or minimal size is
// reached.
func (c *Canvas) fitText(p *book.Page, width, height float64) pageText {
	size := c.cfg.FontSize
	for {
		pt := c.layoutText(p, size, width)
		fits := pt.height <= height
		if p.Type == book.PagePoem {
			for _, b := range pt.blocks {
				fits = fits && b.width <= width
			}
		}
		if fits || size*0.9 < c.cfg.FontSize*minFontScale {
			return pt
		}
		size *= 0.9
	}
}

func (c *Canvas) setColor(dc *gg.Context, col gg.RGBA, alpha float64) {
	dc.SetRGBA(col.R, col.G, col.B, col.A*alpha)
}

// drawPage renders spread page i into its own context. Background stays
// transparent, paper is drawn by the caller.
func (c *Canvas) drawPage(dc *gg.Context, v *pager.View, i int, p *book.Page) {
	dc.ClearWithColor(gg.RGBA{})
	g := c.geo
	m := g.margin
	w, h := g.pageW, g.bookH
	width := w - 2*m
	fam := c.fonts.family(p.Font)

	if v.Hidden(i) {
		c.fill(dc, m, m, width, h-2*m, gg.RGBA{A: 1}, 1)
		c.drawNumber(dc, v, i, fam)
		return
	}

	y := m
	if alpha, ok := v.HeaderVisible(i); ok {
		y += c.drawHeader(dc, p, fam, alpha, width)
	}

	boxH := h - m - y
	if p.HasImage() && len(p.Paragraphs) > 0 {
		boxH -= h * imageShare
	}
	pt := c.fitText(p, width, max(boxH, 0))
	alpha := v.ParagraphAlpha()
	for k, b := range pt.blocks {
		if k > 0 {
			y += pt.size * paragraphGap
		}
		s, ok := v.Paragraph(i, k)
		if !ok {
			y += b.height
			continue
		}
		c.drawBlock(dc, b, pt, paragraphAlign(p.Type, k), m, y, width, len(s), alpha)
		y += b.height
	}

	if visible, revealing := v.ImageVisible(i); visible {
		top := m
		if len(p.Paragraphs) > 0 {
			top = y + pt.size*paragraphGap
		}
		fraction := 1.0
		if revealing {
			fraction = v.ImageReveal
		}
		c.drawImage(dc, p.Image, m, top, width, h-m-top, fraction)
	}

	c.drawNumber(dc, v, i, fam)
}

// drawHeader draws entry header right aligned and returns vertical space it
// took. Long headers shrink.
func (c *Canvas) drawHeader(dc *gg.Context, p *book.Page, fam family, alpha, width float64) float64 {
	s := p.HeaderLine()
	size := c.cfg.FontSize * headerScale
	face := fam.face(p.TitleFont, size)
	for face.Advance(s) > width && size > c.cfg.FontSize*minFontScale {
		size *= 0.9
		face = fam.face(p.TitleFont, size)
	}
	col := c.ink
	if st, ok := markup.Resolve(markup.Permutation{p.TitleStyle}); ok && st.HasColor {
		col = gg.FromColor(st.Color)
	}
	met := face.Metrics()
	dc.SetFont(face)
	c.setColor(dc, col, alpha)
	dc.DrawString(s, c.geo.margin+width-face.Advance(s), c.geo.margin+met.Ascent)
	return (met.Ascent + met.Descent) * 1.5
}

// drawBlock draws first n bytes of laid out paragraph.
func (c *Canvas) drawBlock(dc *gg.Context, b block, pt pageText, a align, left, top, width float64, n int, alpha float64) {
	lineHeight := pt.size * lineSpacing
	for j, l := range b.lines {
		if n <= l.start {
			return
		}
		x := a.x(left, width, l.width)
		baseline := top + float64(j)*lineHeight + pt.size
		for _, r := range l.runs {
			s, ok := r.visible(n)
			if !ok {
				break
			}
			face := pt.fam.face(r.style.Font, pt.size)
			col := c.ink
			if r.style.HasColor {
				col = gg.FromColor(r.style.Color)
			}
			dc.SetFont(face)
			c.setColor(dc, col, alpha)
			dc.DrawString(s, x, baseline)
			x += r.width
		}
	}
}

// drawImage fits picture into the box centered horizontally, fraction is
// relative radius of revealed disc.
func (c *Canvas) drawImage(dc *gg.Context, img *book.Image, left, top, width, height, fraction float64) {
	if fraction <= 0 || width <= 0 || height <= 0 {
		return
	}
	pic, ok := c.images[img.RelativePath]
	if !ok {
		c.log.Debug("Image not uploaded", zap.String("image", img.RelativePath))
		return
	}
	img.Scale(width, height)
	w, h := float64(img.ScaledWidth), float64(img.ScaledHeight)
	if w <= 0 || h <= 0 {
		return
	}

	var buf *gg.ImageBuf
	if fraction >= 1 {
		buf = c.buf(img.RelativePath)
	} else {
		buf = gg.ImageBufFromImage(reveal(pic, fraction))
	}
	dc.DrawImageEx(buf, gg.DrawImageOptions{
		X:         left + (width-w)/2,
		Y:         top + (height-h)/2,
		DstWidth:  w,
		DstHeight: h,
		Opacity:   1,
	})
}

func (c *Canvas) drawNumber(dc *gg.Context, v *pager.View, i int, fam family) {
	alpha := v.NumberAlpha()
	if alpha <= 0 || v.Cover() {
		return
	}
	face := fam.face(markup.FontStyleRegular, c.cfg.FontSize*numberScale)
	s := strconv.Itoa(v.PageNumber(i))
	dc.SetFont(face)
	c.setColor(dc, c.ink, alpha*0.6)
	dc.DrawString(s, (c.geo.pageW-face.Advance(s))/2, c.geo.bookH-c.geo.margin/2)
}

// drawCurl draws the turning page over the spread.
func (c *Canvas) drawCurl(v *pager.View, live *gg.ImageBuf) {
	g := c.geo
	params := c.frameParams(v)
	f := v.Curl.Frame(params)
	w := g.pageW * f.Projection
	if w < 1 {
		return
	}

	// page flat on the right spans [spine, spine+pageW], on the left
	// [left, spine]
	x := g.spine()
	if f.Rotation > 90 {
		x = g.spine() - w
	}

	if f.Surface == anim.SurfaceLive {
		c.fill(c.dc, x, g.top, w, g.bookH, c.paper, 1)
		if live != nil && f.ClipWidth >= 1 {
			src := image.Rect(int(f.ClipX), 0, int(f.ClipX+f.ClipWidth), int(g.bookH))
			c.dc.DrawImageEx(live, gg.DrawImageOptions{X: x, Y: g.top, DstWidth: w, DstHeight: g.bookH, SrcRect: &src, Opacity: 1})
		}
		c.drawShadow(f)
		return
	}

	if buf, ok := c.chrome[f.Surface]; ok {
		c.dc.DrawImageEx(buf, gg.DrawImageOptions{X: x, Y: g.top, DstWidth: w, DstHeight: g.bookH, Opacity: 1})
		return
	}
	col := c.paper
	if f.Surface == anim.SurfaceBackCover || f.Surface == anim.SurfaceMiddleLeft || f.Surface == anim.SurfaceEmptyLeft {
		col = c.cover
	}
	c.fill(c.dc, x, g.top, w, g.bookH, col, 1)
}

func (c *Canvas) drawShadow(f anim.CurlFrame) {
	if c.shadow == nil || f.ShadowOpacity <= 0 || f.ShadowWidth < 1 {
		return
	}
	sw, sh := c.shadow.Bounds()
	src := image.Rect(int(f.ShadowTexStart*float64(sw)), 0, int(f.ShadowTexEnd*float64(sw)), sh)
	if src.Dx() <= 0 {
		return
	}
	g := c.geo
	x := g.spine()
	if f.ShadowRotation > 90 {
		x = g.spine() - f.ShadowWidth
	}
	c.dc.DrawImageEx(c.shadow, gg.DrawImageOptions{
		X:         x,
		Y:         g.top,
		DstWidth:  f.ShadowWidth,
		DstHeight: g.bookH,
		SrcRect:   &src,
		Opacity:   f.ShadowOpacity,
	})
}

func (c *Canvas) frameParams(v *pager.View) anim.FrameParams {
	params := anim.FrameParams{
		Width:     c.geo.pageW,
		Cover:     v.Page == 0 || (v.Page == 1 && v.Curl.Direction() == anim.DirectionLeft),
		BackCover: v.State == pager.WritingClose,
	}
	if v.Book == nil || v.Curl.Direction() != anim.DirectionRight {
		return params
	}
	keys := v.Book.Keys()
	for _, k := range keys {
		if k > v.Page {
			if p, ok := v.Book.Page(k); ok {
				params.Foreword = p.Type == book.PageForeword
			}
			break
		}
	}
	return params
}
