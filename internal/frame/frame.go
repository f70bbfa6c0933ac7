/*
A picture frame is the canvas a collage is built on.

It is sized by the mode, painted with the background colour and the
collage is made by pasting panels on it:

- Header panels with the title and the time it was taken
- One photo panel per captured frame
*/
package frame

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/drummonds/gobooth/internal/drawing"
	"github.com/drummonds/gobooth/internal/mode"
)

type Panelled interface {
	Render(buffer *image.RGBA)
}

// This is the structure which holds the collage being built.
type PictureFrame struct {
	// config
	Mode     mode.Mode
	Bounds   image.Rectangle
	W, H     int
	Buffer   *image.RGBA
	BGColour color.RGBA
	panels   []Panelled
}

// Create a new picture frame sized for the mode's collage
func NewPictureFrame(m mode.Mode) *PictureFrame {
	pf := new(PictureFrame)
	pf.Mode = m
	pf.Bounds = image.Rectangle{Max: m.CanvasSize()}
	pf.W = pf.Bounds.Dx()
	pf.H = pf.Bounds.Dy()
	bg := drawing.ColourNameToRGBA["background"]
	pf.BGColour = color.RGBA{R: bg.R, G: bg.G, B: bg.B, A: 255}
	pf.Buffer = image.NewRGBA(pf.Bounds)
	pf.RepaintBackground()
	pf.panels = make([]Panelled, 0, 2+m.TotalPhotos())
	return pf
}

func (pf *PictureFrame) RepaintBackground() {
	draw.Draw(pf.Buffer, pf.Bounds, &image.Uniform{pf.BGColour}, image.Point{}, draw.Src)
}

func (pf *PictureFrame) AddPanel(panel Panelled) {
	pf.panels = append(pf.panels, panel)
}

// Render pastes every panel onto the buffer in the order they were added
func (pf *PictureFrame) Render() {
	for _, panel := range pf.panels {
		panel.Render(pf.Buffer)
	}
}
