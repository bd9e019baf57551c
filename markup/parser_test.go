package markup

import (
	"image/color"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		text  string
		spans []Span
	}{
		{
			name:  "single tag",
			in:    "[b]x[/b]",
			text:  "x",
			spans: []Span{{Hash: Hash([]string{"b"}), Start: 0, End: 1}},
		},
		{
			name:  "unmatched close",
			in:    "[/b]x",
			text:  "x",
			spans: nil,
		},
		{
			name:  "unclosed open",
			in:    "a[i]bc",
			text:  "abc",
			spans: nil,
		},
		{
			name: "nested",
			in:   "a[i]b[red]c[/red]d[/i]e",
			text: "abcde",
			spans: []Span{
				{Hash: Hash([]string{"i", "red"}), Start: 2, End: 3},
				{Hash: Hash([]string{"i"}), Start: 1, End: 4},
			},
		},
		{
			name:  "close not on top is ignored",
			in:    "[i][b]x[/i]y[/b]",
			text:  "xy",
			spans: []Span{{Hash: Hash([]string{"i", "b"}), Start: 0, End: 2}},
		},
		{
			name:  "unterminated tag consumes rest",
			in:    "ab[i",
			text:  "ab",
			spans: nil,
		},
		{
			name:  "multibyte offsets are bytes",
			in:    "é[b]ü[/b]",
			text:  "éü",
			spans: []Span{{Hash: Hash([]string{"b"}), Start: 2, End: 4}},
		},
		{
			name:  "same name nested",
			in:    "[b][b]x[/b][/b]",
			text:  "x",
			spans: []Span{{Hash: Hash([]string{"b", "b"}), Start: 0, End: 1}, {Hash: Hash([]string{"b"}), Start: 0, End: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.in)
			if res.Text != tt.text {
				t.Errorf("Parse(%q).Text = %q, want %q", tt.in, res.Text, tt.text)
			}
			if len(res.Spans) != len(tt.spans) {
				t.Fatalf("Parse(%q) produced %d spans, want %d: %+v", tt.in, len(res.Spans), len(tt.spans), res.Spans)
			}
			for i := range tt.spans {
				if res.Spans[i] != tt.spans[i] {
					t.Errorf("span[%d] = %+v, want %+v", i, res.Spans[i], tt.spans[i])
				}
				if _, ok := res.Permutations[res.Spans[i].Hash]; !ok {
					t.Errorf("span[%d] hash %d missing from permutations", i, res.Spans[i].Hash)
				}
			}
		})
	}
}

func TestParseDeduplicatesPermutations(t *testing.T) {
	a := Parse("[i]one[/i] and [i]two[/i]")
	b := Parse("other [i]three[/i]")

	if len(a.Permutations) != 1 {
		t.Fatalf("expected single permutation, got %d", len(a.Permutations))
	}
	if a.Spans[0].Hash != b.Spans[0].Hash {
		t.Errorf("identical stacks hashed differently: %d vs %d", a.Spans[0].Hash, b.Spans[0].Hash)
	}

	c := Parse("[b]x[/b]")
	if c.Spans[0].Hash == a.Spans[0].Hash {
		t.Errorf("different stacks share hash %d", c.Spans[0].Hash)
	}
}

func TestHashIsFNV1a(t *testing.T) {
	// offset basis for empty input
	if got := Hash(nil); got != 2166136261 {
		t.Errorf("Hash(nil) = %d, want 2166136261", got)
	}
	if Hash([]string{"ab", "c"}) != Hash([]string{"a", "bc"}) {
		t.Error("hash must depend on concatenation only")
	}
}

func TestTableMerge(t *testing.T) {
	dst := Table{1: {"a"}}
	dst.Merge(Table{1: {"b"}, 2: {"c"}})
	if len(dst) != 2 || dst[1][0] != "b" {
		t.Errorf("Merge() = %v, want last writer to win", dst)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		perm Permutation
		want Style
		ok   bool
	}{
		{"style only", Permutation{"Italic"}, Style{Font: FontStyleItalic}, true},
		{"color only", Permutation{"red"}, Style{Font: FontStyleRegular, Color: color.RGBA{0xff, 0, 0, 0xff}, HasColor: true}, true},
		{"both", Permutation{"bolditalic", "Blue"}, Style{Font: FontStyleBoldItalic, Color: color.RGBA{0, 0, 0xff, 0xff}, HasColor: true}, true},
		{"unknown", Permutation{"whatever"}, Style{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.perm)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Resolve(%v) = %+v, %v; want %+v, %v", tt.perm, got, ok, tt.want, tt.ok)
			}
		})
	}
}
