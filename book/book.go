// Package book holds the content model: a titled collection of numbered pages
// loaded from a JSON or YAML content file together with referenced images.
package book

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"lectern/config"
	"lectern/markup"
)

// LoadMode selects how much of the content file is materialized.
type LoadMode int

const (
	// Soft reads metadata only, used for listings.
	Soft LoadMode = iota
	// Hard decodes images and parses paragraph markup.
	Hard
)

func (m LoadMode) String() string {
	if m == Hard {
		return "Hard"
	}
	return "Soft"
}

// ErrInvalid is wrapped by Err() of every invalid book.
var ErrInvalid = errors.New("invalid book")

// Source locates content file. Images are resolved against Resources, FS is
// used when Resources is nil.
type Source struct {
	FS        fs.FS
	Name      string
	Resources fs.FS
}

// ResourceFS returns file system images and narration are read from.
func (s Source) ResourceFS() fs.FS {
	if s.Resources != nil {
		return s.Resources
	}
	return s.FS
}

// Book is loaded content. Invalid books are still constructed, Err explains
// what was wrong.
type Book struct {
	Path  string
	Title string
	Front string
	Back  *Image
	Pages map[int]*Page

	keys   []int
	styles markup.Table
	mode   LoadMode
	test   bool
	err    error
}

func (b *Book) Valid() bool          { return b.err == nil }
func (b *Book) Err() error           { return b.err }
func (b *Book) Test() bool           { return b.test }
func (b *Book) Mode() LoadMode       { return b.mode }
func (b *Book) Styles() markup.Table { return b.styles }

// Keys returns page numbers in ascending order.
func (b *Book) Keys() []int {
	return b.keys
}

// LastKey returns largest page number, -1 for book without pages.
func (b *Book) LastKey() int {
	if len(b.keys) == 0 {
		return -1
	}
	return b.keys[len(b.keys)-1]
}

// Page returns page by its number.
func (b *Book) Page(key int) (*Page, bool) {
	p, ok := b.Pages[key]
	return p, ok
}

// Images returns every image which has pixels to upload: back cover first,
// then page images in page order.
func (b *Book) Images() []*Image {
	var res []*Image
	if !b.Back.Empty() {
		res = append(res, b.Back)
	}
	for _, k := range b.keys {
		if img := b.Pages[k].Image; !img.Empty() {
			res = append(res, img)
		}
	}
	return res
}

type bookFile struct {
	Test  bool      `yaml:"test"`
	Title string    `yaml:"title"`
	Front string    `yaml:"front"`
	Back  string    `yaml:"back"`
	Pages yaml.Node `yaml:"pages"`
}

type pageFile struct {
	Number     *int     `yaml:"number"`
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Paragraphs []string `yaml:"paragraphs"`
	Font       string   `yaml:"font"`
	TitleStyle string   `yaml:"titleStyle"`
	Sounds     []string `yaml:"sounds"`
	Spicy      bool     `yaml:"spicy"`
	Type       string   `yaml:"type"`
	Image      *string  `yaml:"image"`
}

// Load reads book from src. It never fails: problems with content make the
// book invalid, problems with images produce empty images. Nil cfg means
// default content settings.
func Load(src Source, mode LoadMode, cfg *config.ContentConfig, log *zap.Logger) *Book {
	if cfg == nil {
		cfg = &config.ContentConfig{TabWidth: config.DefaultTabWidth, SVGSize: defaultSVGSize}
	}
	log = log.Named("book").With(zap.String("path", src.Name), zap.Stringer("mode", mode))

	b := &Book{Path: src.Name, Pages: make(map[int]*Page), mode: mode}
	if err := b.load(src, cfg, log); err != nil {
		b.err = err
		log.Debug("Book is invalid", zap.Error(err))
		return b
	}
	log.Debug("Book loaded", zap.String("title", b.Title), zap.Int("pages", len(b.Pages)), zap.Int("styles", len(b.styles)))
	return b
}

const defaultSVGSize = 1024

func (b *Book) load(src Source, cfg *config.ContentConfig, log *zap.Logger) error {
	data, err := fs.ReadFile(src.FS, src.Name)
	if err != nil {
		return fmt.Errorf("%w: unable to read content: %w", ErrInvalid, err)
	}

	var bf bookFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return fmt.Errorf("%w: unable to parse content: %w", ErrInvalid, err)
	}
	b.test, b.Title, b.Front = bf.Test, bf.Title, bf.Front

	if b.mode == Hard && bf.Back != "" {
		b.Back = LoadImage(src.ResourceFS(), bf.Back, cfg, log)
	}

	if err := b.loadPages(&bf.Pages, src.ResourceFS(), cfg, log); err != nil {
		return err
	}

	if b.Title == "" {
		return fmt.Errorf("%w: title is empty", ErrInvalid)
	}
	if len(b.Pages) == 0 {
		return fmt.Errorf("%w: no pages", ErrInvalid)
	}

	if b.mode == Hard {
		b.styles = make(markup.Table)
		for _, k := range b.keys {
			b.styles.Merge(b.Pages[k].Permutations)
		}
	}
	return nil
}

func (b *Book) loadPages(node *yaml.Node, resources fs.FS, cfg *config.ContentConfig, log *zap.Logger) error {
	switch node.Kind {
	case 0:
		return nil
	case yaml.MappingNode:
	default:
		return fmt.Errorf("%w: pages must be a mapping (line %d)", ErrInvalid, node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		kn, vn := node.Content[i], node.Content[i+1]
		key, err := strconv.Atoi(kn.Value)
		if err != nil || key < 0 {
			return fmt.Errorf("%w: page key %q is not a page number (line %d)", ErrInvalid, kn.Value, kn.Line)
		}
		if _, exists := b.Pages[key]; exists {
			return fmt.Errorf("%w: duplicate page %d (line %d)", ErrInvalid, key, kn.Line)
		}

		var pf pageFile
		if err := vn.Decode(&pf); err != nil {
			return fmt.Errorf("%w: unable to decode page %d: %w", ErrInvalid, key, err)
		}
		p, err := b.newPage(&pf, resources, cfg, log.With(zap.Int("page", key)))
		if err != nil {
			return fmt.Errorf("%w: page %d: %w", ErrInvalid, key, err)
		}
		b.Pages[key] = p
		b.keys = append(b.keys, key)
	}
	slices.Sort(b.keys)
	return nil
}

func (b *Book) newPage(pf *pageFile, resources fs.FS, cfg *config.ContentConfig, log *zap.Logger) (*Page, error) {
	typ, err := ParsePageType(pf.Type)
	if err != nil {
		return nil, err
	}

	p := &Page{
		Type:       typ,
		Number:     pf.Number,
		Title:      pf.Title,
		Date:       pf.Date,
		Paragraphs: pf.Paragraphs,
		Font:       pf.Font,
		TitleStyle: pf.TitleStyle,
		TitleFont:  markup.FontStyleBoldItalic,
		Sounds:     pf.Sounds,
		Spicy:      pf.Spicy,
	}

	if pf.TitleStyle != "" {
		if st, err := markup.ParseFontStyle(pf.TitleStyle); err == nil {
			p.TitleFont = st
		} else {
			log.Warn("Ignoring title style", zap.Error(err))
		}
	}

	if b.mode == Soft {
		// image is only referenced so listings know the page has one
		if pf.Image != nil {
			p.Image = newImage(*pf.Image)
		}
		return p, nil
	}

	if pf.Image != nil {
		p.Image = LoadImage(resources, *pf.Image, cfg, log)
	}

	tab := strings.Repeat(" ", cfg.TabWidth)
	p.Spans = make(map[int][]markup.Span)
	p.Permutations = make(markup.Table)
	for i, para := range p.Paragraphs {
		para = strings.ReplaceAll(para, "\t", tab)
		if cfg.Normalize {
			para = norm.NFC.String(para)
		}
		res := markup.Parse(para)
		p.Paragraphs[i] = res.Text
		if len(res.Spans) > 0 {
			p.Spans[i] = res.Spans
		}
		p.Permutations.Merge(res.Permutations)
	}
	return p, nil
}

// LoadImage decodes image at rel. Failures are logged and produce empty image
// keeping the path.
func LoadImage(resources fs.FS, rel string, cfg *config.ContentConfig, log *zap.Logger) *Image {
	img := newImage(rel)
	if rel == "" {
		return img
	}
	svgSize := cfg.SVGSize
	if svgSize <= 0 {
		svgSize = defaultSVGSize
	}
	if err := img.decode(resources, svgSize); err != nil {
		log.Warn("Unable to load image, using empty one", zap.String("image", rel), zap.Error(err))
	}
	return img
}
