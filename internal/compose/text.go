package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/fpang/photo-album-pipeline/internal/album"
)

// DefaultWordsPerLine is the caption wrap width.
const DefaultWordsPerLine = 6

// Anchor positions as a fraction of the canvas height.
const (
	anchorTop    = 0.12
	anchorCenter = 0.50
	anchorBottom = 0.88
)

var (
	textColor  = color.RGBA{R: 0x2B, G: 0x2B, B: 0x2B, A: 0xFF}
	panelColor = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xB4}
)

// WrapWords splits text into lines of at most n words.
func WrapWords(text string, n int) []string {
	if n < 1 {
		n = DefaultWordsPerLine
	}
	words := strings.Fields(text)
	var lines []string
	for len(words) > 0 {
		k := min(n, len(words))
		lines = append(lines, strings.Join(words[:k], " "))
		words = words[k:]
	}
	return lines
}

// AnchorY returns the vertical center of the text block for a placement.
func AnchorY(p album.Placement, height int) int {
	frac := anchorBottom
	switch p {
	case album.PlacementTop:
		frac = anchorTop
	case album.PlacementCenter:
		frac = anchorCenter
	}
	return int(float64(height) * frac)
}

// ParseHexColor parses #RRGGBB.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// fonts holds the parsed Go fonts; faces are sized per canvas.
type fonts struct {
	regular *opentype.Font
	bold    *opentype.Font
}

func loadFonts() (*fonts, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &fonts{regular: regular, bold: bold}, nil
}

type textLine struct {
	text string
	face font.Face
}

// drawTextBlock renders title and caption lines centered horizontally, with
// the whole block vertically centered on anchorY, over a translucent panel.
func (c *Compositor) drawTextBlock(dst *image.RGBA, title, caption string, placement album.Placement) error {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(caption) == "" {
		return nil
	}

	b := dst.Bounds()
	titleFace, err := opentype.NewFace(c.fonts.bold, &opentype.FaceOptions{
		Size: float64(b.Dy()) * 0.045, DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("title face: %w", err)
	}
	defer titleFace.Close()
	captionFace, err := opentype.NewFace(c.fonts.regular, &opentype.FaceOptions{
		Size: float64(b.Dy()) * 0.028, DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("caption face: %w", err)
	}
	defer captionFace.Close()

	var lines []textLine
	for _, l := range WrapWords(title, c.wordsPerLine) {
		lines = append(lines, textLine{text: l, face: titleFace})
	}
	for _, l := range WrapWords(caption, c.wordsPerLine) {
		lines = append(lines, textLine{text: l, face: captionFace})
	}

	blockH, blockW := 0, 0
	for _, l := range lines {
		blockH += l.face.Metrics().Height.Ceil()
		blockW = max(blockW, font.MeasureString(l.face, l.text).Ceil())
	}

	top := AnchorY(placement, b.Dy()) - blockH/2
	pad := b.Dy() / 60
	panel := image.Rect(b.Dx()/2-blockW/2-pad, top-pad, b.Dx()/2+blockW/2+pad, top+blockH+pad).Intersect(b)
	draw.Draw(dst, panel, image.NewUniform(panelColor), image.Point{}, draw.Over)

	y := top
	for _, l := range lines {
		m := l.face.Metrics()
		w := font.MeasureString(l.face, l.text).Ceil()
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(textColor),
			Face: l.face,
			Dot:  fixed.P(b.Dx()/2-w/2, y+m.Ascent.Ceil()),
		}
		d.DrawString(l.text)
		y += m.Height.Ceil()
	}
	return nil
}
