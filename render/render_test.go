package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"

	"go.uber.org/zap"

	"lectern/audio"
	"lectern/book"
	"lectern/config"
	"lectern/markup"
	"lectern/pager"
)

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want [][2]int
	}{
		{"", [][2]int{{0, 0}}},
		{"one", [][2]int{{0, 3}}},
		{"one\ntwo", [][2]int{{0, 3}, {4, 7}}},
		{"a\n\nb\n", [][2]int{{0, 1}, {2, 2}, {3, 4}, {5, 5}}},
	}
	for _, c := range cases {
		if got := splitLines(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitLines(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSplitRuns(t *testing.T) {
	bold := markup.Hash([]string{"b"})
	red := markup.Hash([]string{"b", "red"})
	styles := map[uint32]markup.Style{
		bold: {Font: markup.FontStyleBold},
		red:  {Font: markup.FontStyleBold, Color: color.RGBA{R: 255, A: 255}, HasColor: true},
	}
	// "plain bold red tail": bold covers "bold red", red covers "red"
	p := "plain bold red tail"
	spans := []markup.Span{
		{Hash: bold, Start: 6, End: 14},
		{Hash: red, Start: 11, End: 14},
	}

	runs := splitRuns(p, 0, len(p), spans, styles, markup.Style{})
	var got []string
	for _, r := range runs {
		got = append(got, r.text)
	}
	want := []string{"plain ", "bold ", "red", " tail"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("runs = %q, want %q", got, want)
	}
	if runs[0].style.Font != markup.FontStyleRegular {
		t.Errorf("plain run font = %s", runs[0].style.Font)
	}
	if runs[1].style.Font != markup.FontStyleBold || runs[1].style.HasColor {
		t.Errorf("bold run style = %+v", runs[1].style)
	}
	if !runs[2].style.HasColor || runs[2].style.Color.R != 255 {
		t.Errorf("innermost span must win, got %+v", runs[2].style)
	}

	// line range cutting through a span
	runs = splitRuns(p, 8, 12, spans, styles, markup.Style{})
	got = got[:0]
	for _, r := range runs {
		got = append(got, r.text)
	}
	if want := []string{"ld ", "r"}; !reflect.DeepEqual(got, want) {
		t.Errorf("partial runs = %q, want %q", got, want)
	}
}

func TestSplitRunsUnknownStyle(t *testing.T) {
	spans := []markup.Span{{Hash: 42, Start: 0, End: 2}}
	base := markup.Style{Font: markup.FontStyleItalic}
	runs := splitRuns("ab", 0, 2, spans, nil, base)
	if len(runs) != 1 || runs[0].style != base {
		t.Fatalf("runs = %+v, want single run with base style", runs)
	}
}

func TestLayoutAndVisible(t *testing.T) {
	p := "ab\ncd"
	measure := func(_ markup.Style, s string) float64 { return float64(len(s)) * 10 }
	b := layout(p, splitLines(p), nil, nil, markup.Style{}, 20, measure)

	if len(b.lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(b.lines))
	}
	if b.width != 20 || b.height != 40 {
		t.Errorf("block = %vx%v, want 20x40", b.width, b.height)
	}

	cases := []struct {
		n    int
		line int
		want string
		ok   bool
	}{
		{0, 0, "", false},
		{1, 0, "a", true},
		{2, 0, "ab", true},
		{3, 1, "", false},
		{4, 1, "c", true},
		{5, 1, "cd", true},
	}
	for _, c := range cases {
		got, ok := b.lines[c.line].runs[0].visible(c.n)
		if got != c.want || ok != c.ok {
			t.Errorf("visible(%d) on line %d = %q, %v, want %q, %v", c.n, c.line, got, ok, c.want, c.ok)
		}
	}
}

func TestParagraphAlign(t *testing.T) {
	cases := []struct {
		t    book.PageType
		k    int
		want align
	}{
		{book.PageStory, 0, alignLeft},
		{book.PageStory, 1, alignLeft},
		{book.PageForeword, 1, alignCenter},
		{book.PagePoem, 0, alignLeft},
		{book.PagePoem, 1, alignRight},
		{book.PagePoem, 2, alignLeft},
	}
	for _, c := range cases {
		if got := paragraphAlign(c.t, c.k); got != c.want {
			t.Errorf("paragraphAlign(%s, %d) = %d, want %d", c.t, c.k, got, c.want)
		}
	}
	if x := alignRight.x(10, 100, 30); x != 80 {
		t.Errorf("right aligned x = %v, want 80", x)
	}
	if x := alignCenter.x(10, 100, 30); x != 45 {
		t.Errorf("centered x = %v, want 45", x)
	}
}

func TestReveal(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for i := range src.Pix {
		src.Pix[i] = 255
	}

	if got := reveal(src, 0); got.NRGBAAt(10, 10).A != 0 {
		t.Error("zero fraction must reveal nothing")
	}

	got := reveal(src, 0.25)
	if got.NRGBAAt(10, 10).A != 255 {
		t.Error("center must be revealed")
	}
	if got.NRGBAAt(0, 0).A != 0 || got.NRGBAAt(19, 19).A != 0 {
		t.Error("corners must stay hidden")
	}

	got = reveal(src, 1)
	for _, pt := range []image.Point{{0, 0}, {19, 0}, {0, 19}, {19, 19}} {
		if got.NRGBAAt(pt.X, pt.Y).A != 255 {
			t.Errorf("pixel %v hidden with full fraction", pt)
		}
	}
	if src.NRGBAAt(0, 0).A != 255 {
		t.Error("source was modified")
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		name    string
		want    color.RGBA
		wantErr bool
	}{
		{"black", color.RGBA{A: 255}, false},
		{"OldLace", color.RGBA{R: 253, G: 245, B: 230, A: 255}, false},
		{"#ff0000", color.RGBA{R: 255, A: 255}, false},
		{"nosuchcolor", color.RGBA{}, true},
	}
	for _, c := range cases {
		got, err := parseColor(c.name)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseColor(%q) expected error", c.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseColor(%q): %v", c.name, err)
			continue
		}
		if want := unit(c.want); !closeColor(got.R, want[0]) || !closeColor(got.G, want[1]) || !closeColor(got.B, want[2]) {
			t.Errorf("parseColor(%q) = %+v, want %v", c.name, got, c.want)
		}
	}
}

func unit(c color.RGBA) [3]float64 {
	return [3]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

func closeColor(a, b float64) bool {
	d := a - b
	return d > -0.01 && d < 0.01
}

func renderConfig() *config.RenderConfig {
	return &config.RenderConfig{
		Width:      320,
		Height:     200,
		Margin:     10,
		FontSize:   12,
		Background: "darkslategray",
		Cover:      "saddlebrown",
		Paper:      "white",
		Ink:        "black",
	}
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -2 && d <= 2
}

func TestCanvasDraw(t *testing.T) {
	fsys := fstest.MapFS{"book.json": {Data: []byte(`{"title": "T", "pages": {
		"0": {"title": "Start", "type": "Foreword", "paragraphs": ["Hello [b]world[/b]"]},
		"1": {"type": "Story", "paragraphs": ["Once upon a time there was a page which had to wrap"]},
		"2": {"paragraphs": ["line one\nline two", "second stanza"], "spicy": true}
	}}`)}}
	b := book.Load(book.Source{FS: fsys, Name: "book.json"}, book.Hard, nil, zap.NewNop())
	if !b.Valid() {
		t.Fatalf("test book is invalid: %v", b.Err())
	}

	c, err := New(renderConfig(), nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()

	rc := &config.ReaderConfig{StreamingMode: true, CharInterval: 0.01}
	ctrl := pager.New(rc, audio.New(rc, nil, zap.NewNop()), c, zap.NewNop())
	ctrl.SetViewport(c.Viewport())
	ctrl.SetBook(b)
	ctrl.SetPage(0, false)

	dir := t.TempDir()
	shots := 0
	for frame := 0; frame < 2000 && ctrl.CurrentPage() == 0; frame++ {
		ctrl.Update(1.0 / 30)
		if ctrl.Writing() == pager.WritingDone && !ctrl.IsAnimating() {
			ctrl.AdvancePage(false, false)
		}
		v := ctrl.View()
		if err := c.Draw(&v); err != nil {
			t.Fatalf("Draw frame %d: %v", frame, err)
		}
		if frame%50 == 0 {
			if err := c.SavePNG(filepath.Join(dir, "frame.png")); err != nil {
				t.Fatalf("SavePNG: %v", err)
			}
			shots++
		}
	}
	if ctrl.CurrentPage() != 1 {
		t.Fatalf("current page = %d, want 1", ctrl.CurrentPage())
	}
	if shots == 0 {
		t.Fatal("no snapshots were taken")
	}
	if _, err := os.Stat(filepath.Join(dir, "frame.png")); err != nil {
		t.Fatalf("snapshot is missing: %v", err)
	}

	img := c.Image()
	if got := img.Bounds(); got.Dx() != 320 || got.Dy() != 200 {
		t.Fatalf("frame bounds = %v", got)
	}
	r, g, bl, _ := img.At(0, 0).RGBA()
	if !near(uint8(r>>8), 47) || !near(uint8(g>>8), 79) || !near(uint8(bl>>8), 79) {
		t.Errorf("corner pixel = %d,%d,%d, want background", r>>8, g>>8, bl>>8)
	}
}

func TestCanvasEmptyView(t *testing.T) {
	c, err := New(renderConfig(), nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if err := c.Draw(&pager.View{}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	r, _, _, _ := c.Image().At(160, 100).RGBA()
	if !near(uint8(r>>8), 47) {
		t.Errorf("empty view must show only background, red = %d", r>>8)
	}
}

func TestCanvasUpload(t *testing.T) {
	c, err := New(renderConfig(), nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Upload(&book.Image{RelativePath: "empty.png"})
	if c.buf("empty.png") != nil {
		t.Error("empty image must be ignored")
	}

	img := &book.Image{RelativePath: "dot.png", Pixels: make([]byte, 4*4*4), Width: 4, Height: 4}
	c.Upload(img)
	img.Release()
	if c.buf("dot.png") == nil {
		t.Error("uploaded image must survive release")
	}
}

func TestGeometry(t *testing.T) {
	g := newGeometry(renderConfig())
	if g.bookH != 180 || g.bookW != 270 || g.pageW != 135 {
		t.Fatalf("geometry = %+v", g)
	}
	if g.left != 25 || g.top != 10 || g.spine() != 160 {
		t.Errorf("placement = %+v", g)
	}
}
