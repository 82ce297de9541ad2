package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	iconSize     = 32
	iconMargin   = 2
	iconFontSize = 16
	iconMinFont  = 8
)

// Canvas is the drawing surface the icon is composed on
type Canvas interface {
	Clear(c color.Color)
	MeasureText(text string) (advance fixed.Int26_6, bounds fixed.Rectangle26_6)
	DrawText(text string, dot fixed.Point26_6, c color.Color)
}

// rasterCanvas draws onto an RGBA image with a single font face
type rasterCanvas struct {
	img  *image.RGBA
	face font.Face
}

func (c *rasterCanvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *rasterCanvas) MeasureText(text string) (fixed.Int26_6, fixed.Rectangle26_6) {
	bounds, advance := font.BoundString(c.face, text)
	return advance, bounds
}

func (c *rasterCanvas) DrawText(text string, dot fixed.Point26_6, col color.Color) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  dot,
	}
	d.DrawString(text)
}

// IconRenderer turns short labels into square tray icons
type IconRenderer struct {
	font *opentype.Font
}

// NewIconRenderer parses the embedded Go Bold font
func NewIconRenderer() (*IconRenderer, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse icon font: %w", err)
	}
	return &IconRenderer{font: f}, nil
}

// faceFor returns the largest face, starting at iconFontSize, whose advance
// for text fits between the margins.
func (r *IconRenderer) faceFor(text string) (font.Face, error) {
	for size := iconFontSize; ; size-- {
		face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("create %dpx face: %w", size, err)
		}
		if size <= iconMinFont || font.MeasureString(face, text) <= fixed.I(iconSize-2*iconMargin) {
			return face, nil
		}
		face.Close()
	}
}

// Render draws text centered on a 32x32 square: black on white, or white on
// black when dark is set. Empty text renders as "?".
func (r *IconRenderer) Render(text string, dark bool) (*image.RGBA, error) {
	if text == "" {
		text = "?"
	}

	face, err := r.faceFor(text)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	canvas := &rasterCanvas{img: img, face: face}

	fg, bg := color.Color(color.Black), color.Color(color.White)
	if dark {
		fg, bg = bg, fg
	}
	drawCentered(canvas, text, fg, bg)
	return img, nil
}

// drawCentered centers the advance width inside the margins and the glyph
// bounds vertically.
func drawCentered(c Canvas, text string, fg, bg color.Color) {
	c.Clear(bg)

	advance, bounds := c.MeasureText(text)
	x := fixed.I(iconMargin) + (fixed.I(iconSize-2*iconMargin)-advance)/2
	y := (fixed.I(iconSize)-(bounds.Max.Y-bounds.Min.Y))/2 - bounds.Min.Y

	c.DrawText(text, fixed.Point26_6{X: fixed.I(x.Round()), Y: fixed.I(y.Round())}, fg)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
