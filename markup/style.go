package markup

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// FontStyle selects a face variant within a font family.
type FontStyle int

const (
	FontStyleRegular FontStyle = iota
	FontStyleBold
	FontStyleItalic
	FontStyleBoldItalic
)

var fontStyleNames = [...]string{"Regular", "Bold", "Italic", "BoldItalic"}

func (s FontStyle) String() string {
	if s < 0 || int(s) >= len(fontStyleNames) {
		return fmt.Sprintf("FontStyle(%d)", int(s))
	}
	return fontStyleNames[s]
}

// ParseFontStyle converts case-insensitive style name to FontStyle.
func ParseFontStyle(name string) (FontStyle, error) {
	for i, n := range fontStyleNames {
		if strings.EqualFold(n, name) {
			return FontStyle(i), nil
		}
	}
	return FontStyleRegular, fmt.Errorf("%q is not a valid font style", name)
}

// Style is what a permutation resolves to for rendering.
type Style struct {
	Font     FontStyle
	Color    color.RGBA
	HasColor bool
}

// Resolve maps permutation tokens to a style. Tokens naming a font style set
// the face, tokens naming a color (SVG 1.1 color keywords) set the color, the
// last recognized token of each kind wins. Permutations with no recognized
// tokens resolve to nothing.
func Resolve(perm Permutation) (Style, bool) {
	var (
		st               Style
		haveFont, haveCl bool
	)
	for _, token := range perm {
		if fs, err := ParseFontStyle(token); err == nil {
			st.Font, haveFont = fs, true
		}
		if c, ok := colornames.Map[strings.ToLower(token)]; ok {
			st.Color, haveCl = c, true
		}
	}
	if !haveFont && !haveCl {
		return Style{}, false
	}
	st.HasColor = haveCl
	return st, true
}

// ResolveTable resolves every permutation in the table, dropping those which
// carry no recognized tokens.
func ResolveTable(t Table) map[uint32]Style {
	styles := make(map[uint32]Style, len(t))
	for h, p := range t {
		if st, ok := Resolve(p); ok {
			styles[h] = st
		}
	}
	return styles
}
