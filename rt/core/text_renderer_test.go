package core

import (
	"image"
	"strings"
	"testing"
)

func TestTextRendererGlyphQuads(t *testing.T) {
	tr, err := NewMonoTextRenderer(16)
	if err != nil {
		t.Fatalf("NewMonoTextRenderer: %v", err)
	}

	items := []TextItem{{Text: "Count 200000", Position: [2]float32{10, 10}, Scale: 1, Color: [4]float32{1, 1, 1, 1}}}
	verts := tr.BuildVertices(items, 800, 600)

	visible := len(strings.ReplaceAll(items[0].Text, " ", ""))
	if len(verts) != visible*6 {
		t.Fatalf("got %d vertices, want %d (6 per visible glyph)", len(verts), visible*6)
	}
	for i, v := range verts {
		if v.Pos[0] < -1 || v.Pos[0] > 1 || v.Pos[1] < -1 || v.Pos[1] > 1 {
			t.Fatalf("vertex %d outside clip space: %v", i, v.Pos)
		}
		if v.Color != items[0].Color {
			t.Fatalf("vertex %d color = %v", i, v.Color)
		}
	}
}

func TestTextRendererMeasure(t *testing.T) {
	tr, err := NewMonoTextRenderer(16)
	if err != nil {
		t.Fatalf("NewMonoTextRenderer: %v", err)
	}

	w1, h1 := tr.MeasureText("abcd", 1)
	w2, _ := tr.MeasureText("abcd", 2)
	if w1 <= 0 || h1 <= 0 {
		t.Fatalf("empty measurement %v x %v", w1, h1)
	}
	if w2 != 2*w1 {
		t.Errorf("scale 2 width = %v, want %v", w2, 2*w1)
	}

	// Mono face: every glyph has the same advance.
	wa, _ := tr.MeasureText("iiii", 1)
	if wa != w1 {
		t.Errorf("mono widths differ: %v vs %v", wa, w1)
	}

	_, h2 := tr.MeasureText("a\nb", 1)
	if h2 != 2*h1 {
		t.Errorf("two lines height = %v, want %v", h2, 2*h1)
	}
}

func TestTextRendererRejectsBadFont(t *testing.T) {
	if _, err := NewTextRenderer([]byte("not a font"), 12); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestTextRendererBakesPrintableASCII(t *testing.T) {
	tr, err := NewMonoTextRenderer(18)
	if err != nil {
		t.Fatalf("NewMonoTextRenderer: %v", err)
	}
	for r := rune(' '); r <= '~'; r++ {
		if _, ok := tr.glyphs[r]; !ok {
			t.Errorf("glyph %q missing from atlas", r)
		}
	}
	if !tr.glyphs[' '].blank() {
		t.Error("space should have no atlas cell")
	}
	if g := tr.glyphs['M']; g.uv1[0] <= g.uv0[0] || g.uv1[1] <= g.uv0[1] {
		t.Errorf("bad uv rect for 'M': %v %v", g.uv0, g.uv1)
	}
}

func TestTextRendererSkipsUnknownRunes(t *testing.T) {
	tr, err := NewMonoTextRenderer(16)
	if err != nil {
		t.Fatalf("NewMonoTextRenderer: %v", err)
	}
	item := TextItem{Text: "aéb", Scale: 1}
	if got := len(tr.BuildVertices([]TextItem{item}, 100, 100)); got != 12 {
		t.Errorf("got %d vertices, want 12", got)
	}
	if tr.BuildVertices([]TextItem{item}, 0, 100) != nil {
		t.Error("zero-sized surface should produce nothing")
	}
}

func TestShelfPacker(t *testing.T) {
	p := newShelfPacker(32)

	a, ok := p.place(10, 8)
	if !ok || a != image.Rect(2, 2, 12, 10) {
		t.Fatalf("first cell = %v, %v", a, ok)
	}
	b, _ := p.place(10, 4)
	if b.Min.Y != a.Min.Y || b.Min.X != a.Max.X+atlasGap {
		t.Errorf("second cell not on the same shelf: %v", b)
	}
	c, ok := p.place(10, 4)
	if !ok || c.Min.Y != a.Max.Y+atlasGap || c.Min.X != atlasPadding {
		t.Errorf("third cell should open a new shelf: %v", c)
	}
	if _, ok := p.place(10, 20); ok {
		t.Error("cell taller than the remaining space should not fit")
	}
	if _, ok := newShelfPacker(32).place(40, 1); ok {
		t.Error("cell wider than the atlas should not fit")
	}
}
