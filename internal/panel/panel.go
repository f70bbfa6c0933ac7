// Panels are the pieces a collage or preview is pasted together from.
// Each one knows where it goes and draws itself onto a shared buffer.
package panel

import (
	"fmt"
	"image"
	"image/color"

	"github.com/drummonds/gobooth/internal/drawing"
	"github.com/drummonds/gobooth/internal/mode"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// PhotoPanel is one captured photo in its collage slot, with rounded
// corners, a border and a numbered badge.
type PhotoPanel struct {
	img      image.Image
	Index    int // 0 based capture index, the badge shows Index+1
	Location image.Rectangle
	geometry mode.Geometry
	face     font.Face
}

// NewPhotoPanel places img in the slot for index. A nil img leaves the
// slot blank.
func NewPhotoPanel(img image.Image, index int, m mode.Mode) (*PhotoPanel, error) {
	face, err := Face(true, 16)
	if err != nil {
		return nil, err
	}
	return &PhotoPanel{
		img:      img,
		Index:    index,
		Location: m.Slot(index),
		geometry: m.Geometry(),
		face:     face,
	}, nil
}

// Render scales the photo into its slot. The photo is stretched to the
// slot, captured frames already have the slot's aspect ratio.
func (p *PhotoPanel) Render(buffer *image.RGBA) {
	if p.img == nil {
		return
	}
	loc := p.Location
	tile := image.NewRGBA(image.Rect(0, 0, loc.Dx(), loc.Dy()))
	draw.CatmullRom.Scale(tile, tile.Bounds(), p.img, p.img.Bounds(), draw.Src, nil)

	dc := gg.NewContextForRGBA(buffer)
	x, y := float64(loc.Min.X), float64(loc.Min.Y)
	w, h := float64(loc.Dx()), float64(loc.Dy())
	r := float64(p.geometry.CornerRadius)

	dc.DrawRoundedRectangle(x, y, w, h, r)
	dc.Clip()
	dc.DrawImage(tile, loc.Min.X, loc.Min.Y)
	dc.ResetClip()

	dc.SetColor(drawing.ColourNameToRGBA["border"])
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(x, y, w, h, r)
	dc.Stroke()

	badge := float64(p.geometry.BadgeSize)
	dc.SetColor(drawing.ColourNameToRGBA["badge"])
	dc.DrawRoundedRectangle(x+15, y+15, badge, badge, float64(p.geometry.BadgeRadius))
	dc.Fill()

	dc.SetFontFace(p.face)
	dc.SetColor(drawing.ColourNameToRGBA["badgeText"])
	dc.DrawStringAnchored(fmt.Sprintf("%d", p.Index+1), x+30, y+35, 0.5, 0)
}

// TextPanel is a single line of text centred on X with its baseline at Y.
type TextPanel struct {
	Text   string
	X, Y   float64
	Colour color.Color
	face   font.Face
}

func NewTextPanel(text string, bold bool, size, x, y float64, colour color.Color) (*TextPanel, error) {
	face, err := Face(bold, size)
	if err != nil {
		return nil, err
	}
	return &TextPanel{Text: text, X: x, Y: y, Colour: colour, face: face}, nil
}

func (p *TextPanel) Render(buffer *image.RGBA) {
	if p.Text == "" {
		return
	}
	dc := gg.NewContextForRGBA(buffer)
	dc.SetFontFace(p.face)
	dc.SetColor(p.Colour)
	dc.DrawStringAnchored(p.Text, p.X, p.Y, 0.5, 0)
}

// ImagePanel draws an image scaled into Location.
type ImagePanel struct {
	img      image.Image
	Location image.Rectangle // Where panel is to be rendered
}

func NewImagePanel(img image.Image) *ImagePanel {
	return &ImagePanel{img: img, Location: img.Bounds()}
}

func (p *ImagePanel) Render(buffer *image.RGBA) {
	if p.img == nil || p.Location.Empty() {
		return
	}
	draw.BiLinear.Scale(buffer, p.Location, p.img, p.img.Bounds(), draw.Over, nil)
}

// CountdownPanel dims Location and shows the seconds left in large
// digits. With no countdown running it shows Caption, if any.
type CountdownPanel struct {
	Seconds  int
	Caption  string
	Location image.Rectangle
	digits   font.Face
	caption  font.Face
}

func NewCountdownPanel(loc image.Rectangle) (*CountdownPanel, error) {
	size := float64(loc.Dy()) / 2
	if size < 12 {
		size = 12
	}
	digits, err := Face(true, size)
	if err != nil {
		return nil, err
	}
	caption, err := Face(false, 14)
	if err != nil {
		return nil, err
	}
	return &CountdownPanel{Location: loc, digits: digits, caption: caption}, nil
}

func (p *CountdownPanel) Render(buffer *image.RGBA) {
	dc := gg.NewContextForRGBA(buffer)
	loc := p.Location
	if p.Seconds > 0 {
		dc.SetColor(drawing.ColourNameToRGBA["overlay"])
		dc.DrawRectangle(float64(loc.Min.X), float64(loc.Min.Y), float64(loc.Dx()), float64(loc.Dy()))
		dc.Fill()
		dc.SetFontFace(p.digits)
		dc.SetColor(drawing.ColourNameToRGBA["badgeText"])
		cx := float64(loc.Min.X) + float64(loc.Dx())/2
		cy := float64(loc.Min.Y) + float64(loc.Dy())/2
		dc.DrawStringAnchored(fmt.Sprintf("%d", p.Seconds), cx, cy, 0.5, 0.35)
		return
	}
	if p.Caption == "" {
		return
	}
	// Pill in the top left corner, eg "Photo 2 in 4s"
	dc.SetFontFace(p.caption)
	cw, ch := dc.MeasureString(p.Caption)
	x, y := float64(loc.Min.X)+12, float64(loc.Min.Y)+12
	dc.SetColor(drawing.ColourNameToRGBA["badge"])
	dc.DrawRoundedRectangle(x, y, cw+20, ch+12, (ch+12)/2)
	dc.Fill()
	dc.SetColor(drawing.ColourNameToRGBA["badgeText"])
	dc.DrawString(p.Caption, x+10, y+6+ch)
}
