package hud

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

// Display size in pixels.
const (
	Width  = 320
	Height = 240
)

var (
	background  = gocv.NewScalar(24, 18, 16, 0) // BGR
	headerColor = color.RGBA{R: 160, G: 170, B: 180, A: 255}
	barColor    = color.RGBA{R: 40, G: 44, B: 52, A: 255}
	textColor   = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	fingerColor = color.RGBA{R: 0, G: 200, B: 255, A: 255}
	anchorColor = color.RGBA{R: 255, G: 120, B: 0, A: 255}
)

const (
	fingerRadius = 12
	anchorRadius = 6
	barHeight    = 24
)

// Renderer draws State onto frames.
type Renderer struct {
	width, height int
}

// NewRenderer creates a Renderer for the standard display size.
func NewRenderer() *Renderer {
	return &Renderer{width: Width, height: Height}
}

// Render draws s onto a new BGR frame. The caller must Close the result.
func (r *Renderer) Render(s State) gocv.Mat {
	img := gocv.NewMatWithSizeFromScalar(background, r.height, r.width, gocv.MatTypeCV8UC3)

	gocv.PutText(&img, HeaderLine(s), image.Pt(6, 16), gocv.FontHersheySimplex, 0.45, headerColor, 1)

	for _, f := range s.Fingers {
		gocv.Circle(&img, image.Pt(f.X, f.Y), fingerRadius, fingerColor, -1)
		gocv.PutText(&img, fmt.Sprint(f.Slot), image.Pt(f.X+fingerRadius+2, f.Y+4),
			gocv.FontHersheySimplex, 0.4, textColor, 1)
	}

	if !s.Last.IsNone() {
		gocv.Circle(&img, image.Pt(s.Last.X, s.Last.Y), anchorRadius, anchorColor, 2)
	}

	bar := image.Rect(0, r.height-barHeight, r.width, r.height)
	gocv.Rectangle(&img, bar, barColor, -1)
	gocv.PutText(&img, GestureLine(s), image.Pt(6, r.height-8), gocv.FontHersheySimplex, 0.45, textColor, 1)

	return img
}

// EncodeJPEG compresses a frame to JPEG bytes.
func EncodeJPEG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

// Display couples a Panel with a Renderer to produce encoded frames.
type Display struct {
	Panel    *Panel
	renderer *Renderer
}

// NewDisplay creates a Display over panel.
func NewDisplay(panel *Panel) *Display {
	return &Display{Panel: panel, renderer: NewRenderer()}
}

// JPEG renders the panel state at now and encodes it.
func (d *Display) JPEG(now time.Time) ([]byte, error) {
	img := d.renderer.Render(d.Panel.Snapshot(now))
	defer img.Close()
	return EncodeJPEG(img)
}
