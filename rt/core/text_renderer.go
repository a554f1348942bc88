package core

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

type TextItem struct {
	Text     string
	Position [2]float32 // surface pixels, top-left origin
	Scale    float32
	Color    [4]float32
}

// glyph is a baked atlas cell with its layout metrics in pixels at scale 1.
type glyph struct {
	uv0, uv1 [2]float32
	w, h     float32
	dx, dy   float32 // offset from the pen on the baseline
	advance  float32
}

func (g glyph) blank() bool {
	return g.w == 0 || g.h == 0
}

// TextRenderer holds printable ASCII baked into a single-channel atlas and
// lays out panel text against it. Only the metrics are kept; the font face is
// closed once the atlas is built.
type TextRenderer struct {
	Atlas *image.Alpha

	glyphs     map[rune]glyph
	ascent     float32
	lineHeight float32
}

const (
	atlasSize    = 512
	atlasPadding = 2
	atlasGap     = 4
)

// shelfPacker fills the atlas left to right in rows as tall as their tallest
// glyph.
type shelfPacker struct {
	size, x, y, row int
}

func newShelfPacker(size int) *shelfPacker {
	return &shelfPacker{size: size, x: atlasPadding, y: atlasPadding}
}

// place reserves a w×h cell, or reports false once the atlas is full.
func (p *shelfPacker) place(w, h int) (image.Rectangle, bool) {
	if p.x+w >= p.size {
		p.x = atlasPadding
		p.y += p.row + atlasGap
		p.row = 0
	}
	if p.y+h >= p.size || w >= p.size {
		return image.Rectangle{}, false
	}
	r := image.Rect(p.x, p.y, p.x+w, p.y+h)
	p.x += w + atlasGap
	p.row = max(p.row, h)
	return r, true
}

// NewMonoTextRenderer uses the Go Mono face bundled with x/image, so the panel
// columns line up without shipping a font file.
func NewMonoTextRenderer(fontSize float64) (*TextRenderer, error) {
	return NewTextRenderer(gomono.TTF, fontSize)
}

func NewTextRenderer(fontBytes []byte, fontSize float64) (*TextRenderer, error) {
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	defer face.Close()

	tr := &TextRenderer{
		Atlas:      image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize)),
		glyphs:     make(map[rune]glyph),
		ascent:     float32(face.Metrics().Ascent.Ceil()),
		lineHeight: float32(face.Metrics().Height.Ceil()),
	}
	packer := newShelfPacker(atlasSize)
	for r := rune(' '); r <= '~'; r++ {
		if err := tr.bake(face, packer, r); err != nil {
			return nil, fmt.Errorf("font size %.0f: %w", fontSize, err)
		}
	}
	return tr, nil
}

func (tr *TextRenderer) bake(face font.Face, packer *shelfPacker, r rune) error {
	bounds, mask, maskPt, adv, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return nil
	}
	size := mask.Bounds().Size()
	cell, ok := packer.place(size.X, size.Y)
	if !ok {
		return fmt.Errorf("glyph atlas full at %q", r)
	}
	draw.Draw(tr.Atlas, cell, mask, maskPt, draw.Src)

	tr.glyphs[r] = glyph{
		uv0:     [2]float32{float32(cell.Min.X) / atlasSize, float32(cell.Min.Y) / atlasSize},
		uv1:     [2]float32{float32(cell.Max.X) / atlasSize, float32(cell.Max.Y) / atlasSize},
		w:       float32(size.X),
		h:       float32(size.Y),
		dx:      float32(bounds.Min.X),
		dy:      float32(bounds.Min.Y),
		advance: float32(adv) / 64,
	}
	return nil
}

// BuildVertices emits two clip-space triangles per visible glyph. Runes
// outside the atlas are skipped without advancing the pen.
func (tr *TextRenderer) BuildVertices(items []TextItem, screenW, screenH int) []TextVertex {
	if screenW <= 0 || screenH <= 0 {
		return nil
	}
	toClip := func(x, y float32) [2]float32 {
		return [2]float32{x/float32(screenW)*2 - 1, 1 - y/float32(screenH)*2}
	}

	var vertices []TextVertex
	for _, item := range items {
		scale := item.Scale
		if scale <= 0 {
			scale = 1
		}
		penX, penY := item.Position[0], item.Position[1]+tr.ascent*scale
		for _, r := range item.Text {
			if r == '\n' {
				penX = item.Position[0]
				penY += tr.lineHeight * scale
				continue
			}
			g, ok := tr.glyphs[r]
			if !ok {
				continue
			}
			if !g.blank() {
				x0, y0 := penX+g.dx*scale, penY+g.dy*scale
				p0 := toClip(x0, y0)
				p1 := toClip(x0+g.w*scale, y0+g.h*scale)
				c := item.Color
				topLeft := TextVertex{Pos: p0, UV: g.uv0, Color: c}
				topRight := TextVertex{Pos: [2]float32{p1[0], p0[1]}, UV: [2]float32{g.uv1[0], g.uv0[1]}, Color: c}
				bottomLeft := TextVertex{Pos: [2]float32{p0[0], p1[1]}, UV: [2]float32{g.uv0[0], g.uv1[1]}, Color: c}
				bottomRight := TextVertex{Pos: p1, UV: g.uv1, Color: c}
				vertices = append(vertices, topLeft, topRight, bottomLeft, topRight, bottomRight, bottomLeft)
			}
			penX += g.advance * scale
		}
	}
	return vertices
}

// MeasureText returns the widest line and the total height of text.
func (tr *TextRenderer) MeasureText(text string, scale float32) (float32, float32) {
	if tr == nil {
		return 0, 0
	}
	var widest, line float32
	lines := 1
	for _, r := range text {
		if r == '\n' {
			widest = max(widest, line)
			line = 0
			lines++
			continue
		}
		line += tr.glyphs[r].advance * scale
	}
	return max(widest, line), tr.GetLineHeight(scale) * float32(lines)
}

func (tr *TextRenderer) GetLineHeight(scale float32) float32 {
	if tr == nil {
		return 0
	}
	return tr.lineHeight * scale
}
