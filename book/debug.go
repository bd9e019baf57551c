package book

import (
	"fmt"
	"slices"
	"strings"

	"github.com/maruel/natural"

	"lectern/markup"
	"lectern/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the loaded book omitting pixel data. It
// exists solely for manual inspection.
func (b *Book) String() string {
	if b == nil {
		return "<nil Book>"
	}
	return treeWriter{debug.NewTreeWriter()}.book(b).String()
}

func (tw treeWriter) book(b *Book) treeWriter {
	tw.Line(0, "Book path=%q mode=%s test=%t", b.Path, b.mode, b.test)
	if b.err != nil {
		tw.Line(1, "Error: %v", b.err)
	}
	tw.TextBlock(1, "Title", b.Title)
	tw.TextBlock(1, "Front", b.Front)
	if b.Back != nil {
		tw.image(1, "Back", b.Back)
	}
	for _, k := range b.keys {
		tw.page(1, k, b.Pages[k])
	}
	tw.styles(1, b.styles)
	return tw
}

func (tw treeWriter) image(depth int, label string, img *Image) {
	tw.Line(depth, "%s path=%q size=%dx%d ratio=%.3f channels=%d pixels=%d",
		label, img.RelativePath, img.Width, img.Height, img.Ratio, img.Channels, len(img.Pixels))
}

func (tw treeWriter) page(depth, key int, p *Page) {
	tw.Line(depth, "Page[%d] type=%s spicy=%t", key, p.Type, p.Spicy)
	if h := p.HeaderLine(); h != "" {
		tw.TextBlock(depth+1, "Header", h)
	}
	if p.Font != "" {
		tw.TextBlock(depth+1, "Font", p.Font)
	}
	if p.TitleStyle != "" {
		tw.Line(depth+1, "TitleStyle: %s", p.TitleFont)
	}
	if p.Image != nil {
		tw.image(depth+1, "Image", p.Image)
	}
	tw.List(depth+1, "Paragraphs", p.Paragraphs)
	tw.List(depth+1, "Sounds", p.Sounds)
	for i := range p.Paragraphs {
		spans := p.Spans[i]
		if len(spans) == 0 {
			continue
		}
		parts := make([]string, 0, len(spans))
		for _, s := range spans {
			parts = append(parts, fmt.Sprintf("%08x[%d:%d]", s.Hash, s.Start, s.End))
		}
		tw.Line(depth+1, "Spans[%d]: %s", i, strings.Join(parts, " "))
	}
}

func (tw treeWriter) styles(depth int, styles markup.Table) {
	if len(styles) == 0 {
		return
	}
	lines := make([]string, 0, len(styles))
	for h, perm := range styles {
		lines = append(lines, fmt.Sprintf("%08x %s", h, strings.Join(perm, "+")))
	}
	slices.SortFunc(lines, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	tw.Line(depth, "Styles: %d", len(lines))
	for _, l := range lines {
		tw.Line(depth+1, "%s", l)
	}
}
