package render

import (
	"fmt"
	"strings"

	"github.com/gogpu/gg/text"
	"go.uber.org/multierr"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"

	"lectern/markup"
)

// family is a set of font sources indexed by markup.FontStyle.
type family [4]*text.FontSource

func newFamily(regular, bold, italic, boldItalic []byte) (family, error) {
	var f family
	for i, data := range [...][]byte{regular, bold, italic, boldItalic} {
		src, err := text.NewFontSource(data)
		if err != nil {
			f.close()
			return family{}, fmt.Errorf("unable to load font %s: %w", markup.FontStyle(i), err)
		}
		f[i] = src
	}
	return f, nil
}

func (f family) face(st markup.FontStyle, size float64) text.Face {
	if st < 0 || int(st) >= len(f) {
		st = markup.FontStyleRegular
	}
	return f[st].Face(size)
}

func (f family) close() error {
	var err error
	for _, src := range f {
		if src != nil {
			err = multierr.Append(err, src.Close())
		}
	}
	return err
}

// fonts holds built-in families. Page font names are only hints: anything
// mentioning "mono" selects monospaced family.
type fonts struct {
	sans family
	mono family
}

func loadFonts() (*fonts, error) {
	sans, err := newFamily(goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF)
	if err != nil {
		return nil, err
	}
	mono, err := newFamily(gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF)
	if err != nil {
		return nil, multierr.Append(err, sans.close())
	}
	return &fonts{sans: sans, mono: mono}, nil
}

func (f *fonts) family(name string) family {
	if strings.Contains(strings.ToLower(name), "mono") {
		return f.mono
	}
	return f.sans
}

func (f *fonts) close() error {
	return multierr.Append(f.sans.close(), f.mono.close())
}
