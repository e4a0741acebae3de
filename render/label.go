package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Label rasterizes short captions, such as the current model name, into
// images that can be uploaded as sprite textures.
type Label struct {
	font    *truetype.Font
	size    float64
	padding int
	fg, bg  color.Color
}

// NewLabel returns a label drawing Go Regular at size points.
func NewLabel(size float64) (*Label, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("can't parse label font: %v", err)
	}
	return &Label{
		font:    f,
		size:    size,
		padding: 4,
		fg:      color.Black,
		bg:      color.RGBA{0xff, 0xff, 0xff, 0xc0},
	}, nil
}

// Render draws text at the given pixel density. The image is sized to fit the
// text plus padding.
func (l *Label) Render(text string, pixelsPerPt float32) (*image.RGBA, error) {
	if text == "" {
		return nil, errors.New("empty label text")
	}
	return l.RenderLines([]string{text}, pixelsPerPt)
}

// RenderLines draws lines top to bottom, left aligned.
func (l *Label) RenderLines(lines []string, pixelsPerPt float32) (*image.RGBA, error) {
	if len(lines) == 0 {
		return nil, errors.New("no label lines")
	}
	if pixelsPerPt <= 0 {
		pixelsPerPt = 1
	}
	face := truetype.NewFace(l.font, &truetype.Options{
		Size:    l.size,
		DPI:     72 * float64(pixelsPerPt),
		Hinting: font.HintingFull,
	})
	defer face.Close()

	m := face.Metrics()
	pad := int(float32(l.padding) * pixelsPerPt)
	lineH := (m.Ascent + m.Descent).Ceil()
	w := 0
	for _, s := range lines {
		if lw := font.MeasureString(face, s).Ceil(); lw > w {
			w = lw
		}
	}
	w += 2 * pad
	h := lineH*len(lines) + 2*pad

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(l.bg), image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(l.fg),
		Face: face,
	}
	for i, s := range lines {
		d.Dot = fixed.P(pad, pad+m.Ascent.Ceil()+i*lineH)
		d.DrawString(s)
	}
	return img, nil
}
