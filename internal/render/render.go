// Package render draws the cover images served at /cover/news and
// /cover/memoriam, the endpoints the poster URL builder points at.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
)

const (
	coverWidth  = 1080
	coverHeight = 1350

	padX = 64.0
)

var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
}

// Renderer draws news and memorial covers as PNG.
type Renderer struct {
	width  int
	height int
}

func New() *Renderer {
	return &Renderer{width: coverWidth, height: coverHeight}
}

// NewsCover renders a standard cover: the article image (or a dark
// gradient when bg is nil), accent band and the headline anchored in
// the lower third.
func (r *Renderer) NewsCover(bg image.Image, headline string) ([]byte, error) {
	if strings.TrimSpace(headline) == "" {
		return nil, fmt.Errorf("headline must not be empty")
	}

	dc := gg.NewContext(r.width, r.height)
	r.drawBackdrop(dc, bg)

	// Accent band above the headline block
	dc.SetColor(hexColor("#e50914"))
	dc.DrawRectangle(padX, float64(r.height)*0.62, 120, 8)
	dc.Fill()

	r.loadFont(dc, 58)
	dc.SetColor(color.White)
	dc.DrawStringWrapped(headline, padX, float64(r.height)*0.66,
		0, 0, float64(r.width)-2*padX, 1.3, gg.AlignLeft)

	r.drawBrandline(dc)
	return encodePNG(dc)
}

// MemorialCover renders an in-memoriam cover with the name and life
// years. Both years must be known; the analyze stage never requests a
// memorial cover without them.
func (r *Renderer) MemorialCover(bg image.Image, name string, birth, death int) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name must not be empty")
	}
	if birth <= 0 || death <= 0 {
		return nil, fmt.Errorf("both life years are required")
	}

	dc := gg.NewContext(r.width, r.height)
	r.drawBackdrop(dc, bg)

	// Dark vignette band behind the text block
	dc.SetColor(color.RGBA{0, 0, 0, 140})
	dc.DrawRectangle(0, float64(r.height)*0.60, float64(r.width), float64(r.height)*0.40)
	dc.Fill()

	r.loadFont(dc, 40)
	dc.SetColor(hexColor("#c0c0c0"))
	dc.DrawStringAnchored("IN MEMORIAM", float64(r.width)/2, float64(r.height)*0.68, 0.5, 0.5)

	r.loadFont(dc, 64)
	dc.SetColor(color.White)
	dc.DrawStringWrapped(name, float64(r.width)/2, float64(r.height)*0.76,
		0.5, 0.5, float64(r.width)-2*padX, 1.2, gg.AlignCenter)

	r.loadFont(dc, 44)
	dc.SetColor(hexColor("#c0c0c0"))
	years := fmt.Sprintf("%d – %d", birth, death)
	dc.DrawStringAnchored(years, float64(r.width)/2, float64(r.height)*0.85, 0.5, 0.5)

	r.drawBrandline(dc)
	return encodePNG(dc)
}

// drawBackdrop fills the canvas with the cover image, scaled to span
// the frame, under a darkening overlay so the text stays readable. A
// nil image gets the gradient fallback.
func (r *Renderer) drawBackdrop(dc *gg.Context, bg image.Image) {
	if bg == nil {
		r.drawGradient(dc)
		return
	}

	bounds := bg.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		r.drawGradient(dc)
		return
	}
	sx := float64(r.width) / float64(bounds.Dx())
	sy := float64(r.height) / float64(bounds.Dy())
	scale := sx
	if sy > sx {
		scale = sy
	}
	dc.Push()
	dc.Scale(scale, scale)
	dc.DrawImage(bg, 0, 0)
	dc.Pop()

	dc.SetColor(color.RGBA{0, 0, 0, 90})
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()
}

func (r *Renderer) drawGradient(dc *gg.Context) {
	// Vertical gradient, near-black to dark blue
	height := float64(r.height)
	for y := 0; y < r.height; y++ {
		t := float64(y) / height
		cr := 8 + t*8
		cg := 8 + t*8
		cb := 16 + t*20
		dc.SetColor(color.RGBA{uint8(cr), uint8(cg), uint8(cb), 255})
		dc.DrawRectangle(0, float64(y), float64(r.width), 1)
		dc.Fill()
	}
}

func (r *Renderer) drawBrandline(dc *gg.Context) {
	r.loadFont(dc, 24)
	dc.SetColor(hexColor("#666680"))
	dc.DrawStringAnchored("telanews", float64(r.width)/2, float64(r.height)-48, 0.5, 0.5)
}

func (r *Renderer) loadFont(dc *gg.Context, size float64) {
	for _, path := range fontPaths {
		if err := dc.LoadFontFace(path, size); err == nil {
			return
		}
	}
	// gg falls back to its basic built-in font
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func hexColor(hex string) color.Color {
	hex = strings.TrimPrefix(hex, "#")
	var cr, cg, cb uint8
	fmt.Sscanf(hex, "%02x%02x%02x", &cr, &cg, &cb)
	return color.RGBA{cr, cg, cb, 255}
}
