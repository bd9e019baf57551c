package render

import (
	"slices"
	"strings"

	"github.com/gogpu/gg/text"

	"lectern/markup"
)

// run is a piece of a line drawn with a single style.
type run struct {
	text  string
	start int
	end   int
	style markup.Style
	width float64
}

// line is a single row of paragraph text, offsets are bytes in stripped
// paragraph.
type line struct {
	start int
	end   int
	runs  []run
	width float64
}

// block is laid out paragraph.
type block struct {
	lines  []line
	width  float64
	height float64
}

// measurer reports advance width of text drawn with style.
type measurer func(st markup.Style, s string) float64

// splitLines breaks paragraph on explicit line feeds.
func splitLines(p string) [][2]int {
	var res [][2]int
	start := 0
	for {
		i := strings.IndexByte(p[start:], '\n')
		if i < 0 {
			return append(res, [2]int{start, len(p)})
		}
		res = append(res, [2]int{start, start + i})
		start += i + 1
	}
}

// wrapLines word wraps paragraph treating line feeds as spaces. Returned
// ranges index the original paragraph.
func wrapLines(p string, face text.Face, maxWidth float64) [][2]int {
	flat := strings.ReplaceAll(p, "\n", " ")
	var res [][2]int
	for _, r := range text.WrapText(flat, face, maxWidth, text.WrapWord) {
		start, end := min(max(r.Start, 0), len(p)), min(max(r.End, 0), len(p))
		if end < start {
			end = start
		}
		res = append(res, [2]int{start, end})
	}
	return res
}

// innermost returns the shortest span covering [start, end).
func innermost(spans []markup.Span, start, end int) (markup.Span, bool) {
	var (
		best  markup.Span
		found bool
	)
	for _, s := range spans {
		if s.Start > start || s.End < end {
			continue
		}
		if !found || s.End-s.Start < best.End-best.Start {
			best, found = s, true
		}
	}
	return best, found
}

// splitRuns cuts range [start, end) at every span boundary and styles each
// piece by its innermost span.
func splitRuns(p string, start, end int, spans []markup.Span, styles map[uint32]markup.Style, base markup.Style) []run {
	cuts := []int{start, end}
	for _, s := range spans {
		for _, o := range [...]int{s.Start, s.End} {
			if o > start && o < end {
				cuts = append(cuts, o)
			}
		}
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	runs := make([]run, 0, len(cuts)-1)
	for i := 0; i+1 < len(cuts); i++ {
		r := run{text: strings.ReplaceAll(p[cuts[i]:cuts[i+1]], "\n", " "), start: cuts[i], end: cuts[i+1], style: base}
		if s, ok := innermost(spans, r.start, r.end); ok {
			if st, ok := styles[s.Hash]; ok {
				r.style = merge(base, st)
			}
		}
		runs = append(runs, r)
	}
	return runs
}

func merge(base, st markup.Style) markup.Style {
	res := base
	res.Font = st.Font
	if st.HasColor {
		res.Color, res.HasColor = st.Color, true
	}
	return res
}

// layout builds paragraph block. Ranges come either from wrapping or from
// explicit line feeds.
func layout(p string, ranges [][2]int, spans []markup.Span, styles map[uint32]markup.Style, base markup.Style, lineHeight float64, measure measurer) block {
	var b block
	for _, rg := range ranges {
		l := line{start: rg[0], end: rg[1]}
		l.runs = splitRuns(p, rg[0], rg[1], spans, styles, base)
		for i := range l.runs {
			l.runs[i].width = measure(l.runs[i].style, l.runs[i].text)
			l.width += l.runs[i].width
		}
		b.lines = append(b.lines, l)
		b.width = max(b.width, l.width)
	}
	b.height = float64(len(b.lines)) * lineHeight
	return b
}

// visible trims run to first n bytes of paragraph.
func (r run) visible(n int) (string, bool) {
	switch {
	case n <= r.start:
		return "", false
	case n >= r.end:
		return r.text, true
	}
	return r.text[:n-r.start], true
}
