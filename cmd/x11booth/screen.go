package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/disintegration/gift"
	"github.com/drummonds/gobooth/internal/booth"
	"github.com/drummonds/gobooth/internal/drawing"
	"github.com/drummonds/gobooth/internal/mode"
	"github.com/drummonds/gobooth/internal/panel"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

const (
	margin       = 20
	previewW     = 640
	previewH     = 480
	stripW       = 360
	windowWidth  = previewW + stripW + 3*margin
	windowHeight = previewH + 2*margin + 40
)

// Keysyms the booth answers to.
const (
	keySpace  = 0x0020
	key2      = 0x0032
	key4      = 0x0034
	keyF      = 0x0066
	keyM      = 0x006d
	keyQ      = 0x0071
	keyR      = 0x0072
	keyS      = 0x0073
	keyW      = 0x0077
	keyEscape = 0xff1b
)

// screen draws the live preview, countdown and collage into one buffer.
type screen struct {
	b         *booth.Booth
	outputDir string

	Buffer    *image.RGBA
	preview   image.Rectangle
	strip     image.Rectangle
	footer    image.Point
	countdown *panel.CountdownPanel
	bg        color.RGBA

	// Strip thumbnails by frame index, valid for one booth generation.
	thumbs    map[int]*image.RGBA
	thumbsGen uint64
}

func newScreen(b *booth.Booth, outputDir string) (*screen, error) {
	s := &screen{
		b:         b,
		outputDir: outputDir,
		Buffer:    image.NewRGBA(image.Rect(0, 0, windowWidth, windowHeight)),
		preview:   image.Rect(margin, margin, margin+previewW, margin+previewH),
		strip:     image.Rect(2*margin+previewW, margin, 2*margin+previewW+stripW, margin+previewH),
		footer:    image.Pt(margin+previewW/2, margin+previewH+28),
		bg:        color.RGBA{0x4c, 0x1d, 0x95, 0xff},
	}
	var err error
	s.countdown, err = panel.NewCountdownPanel(s.preview)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// livePreview crops and filters img the way a capture would be, sized to
// fit the preview area. The preview is always mirrored so it behaves like a
// mirror; Status.Mirror only applies to captures.
func livePreview(img image.Image, st booth.Status, area image.Rectangle) (*image.RGBA, error) {
	g, err := booth.Pipeline(img.Bounds(), st.Mode, true)
	if err != nil {
		return nil, err
	}
	g.Add(gift.ResizeToFit(area.Dx(), area.Dy(), gift.LinearResampling))
	g.Add(st.Filter)
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst, nil
}

// Render repaints the whole buffer from the booth state.
func (s *screen) Render() {
	draw.Draw(s.Buffer, s.Buffer.Bounds(), &image.Uniform{s.bg}, image.Point{}, draw.Src)
	draw.Draw(s.Buffer, s.preview, &image.Uniform{color.Black}, image.Point{}, draw.Src)
	st := s.b.Status()

	if img, err := s.b.Source().Frame(); err == nil {
		if pv, err := livePreview(img, st, s.preview); err == nil {
			draw.Draw(s.Buffer, drawing.CentreIn(pv.Bounds(), s.preview), pv, image.Point{}, draw.Src)
		} else {
			logrus.WithError(err).Debug("No preview")
		}
	}
	s.countdown.Seconds = st.Countdown
	s.countdown.Caption = st.Caption()
	s.countdown.Render(s.Buffer)

	s.renderStrip(st)

	footer := st.Mode.Label() + "  ·  " + st.Filter.Label()
	if st.Mirror {
		footer += "  ·  mirrored"
	}
	if t, err := panel.NewTextPanel(footer, false, 16, float64(s.footer.X), float64(s.footer.Y), color.White); err == nil {
		t.Render(s.Buffer)
	}
}

// renderStrip shows the finished collage or the photos taken so far.
func (s *screen) renderStrip(st booth.Status) {
	draw.Draw(s.Buffer, s.strip, &image.Uniform{drawing.ColourNameToRGBA["background"]}, image.Point{}, draw.Src)
	if c, err := s.b.Collage(); err == nil {
		p := panel.NewImagePanel(c.Image)
		p.Location = drawing.CentreIn(drawing.ScaleImageInside(c.Image.Bounds(), s.strip.Dx(), s.strip.Dy()), s.strip)
		p.Render(s.Buffer)
		return
	}
	// Empty slots of the strip as they will be laid out
	canvas := image.Rectangle{Max: st.Mode.CanvasSize()}
	area := drawing.CentreIn(drawing.ScaleImageInside(canvas, s.strip.Dx(), s.strip.Dy()), s.strip)
	scale := float64(area.Dx()) / float64(canvas.Dx())
	if s.thumbs == nil || st.Generation != s.thumbsGen {
		s.thumbs = make(map[int]*image.RGBA)
		s.thumbsGen = st.Generation
	}
	frames := s.b.Frames()
	for i := 0; i < st.Mode.TotalPhotos(); i++ {
		slot := scaleRect(st.Mode.Slot(i), scale).Add(area.Min)
		if i < len(frames) && frames[i].Mode == st.Mode {
			if thumb := s.thumbnail(i, frames[i].Data, slot.Size()); thumb != nil {
				draw.Draw(s.Buffer, slot, thumb, image.Point{}, draw.Src)
				continue
			}
		}
		draw.Draw(s.Buffer, slot, &image.Uniform{drawing.ColourNameToRGBA["border"]}, image.Point{}, draw.Src)
	}
}

// thumbnail decodes and scales frame i once per generation.
func (s *screen) thumbnail(i int, data []byte, size image.Point) *image.RGBA {
	if t, ok := s.thumbs[i]; ok && t.Bounds().Size() == size {
		return t
	}
	img, err := decodeFrame(data)
	if err != nil {
		logrus.WithError(err).WithField("index", i).Debug("Can't show photo")
		return nil
	}
	t := image.NewRGBA(image.Rectangle{Max: size})
	draw.BiLinear.Scale(t, t.Bounds(), img, img.Bounds(), draw.Src, nil)
	s.thumbs[i] = t
	return t
}

func decodeFrame(data []byte) (image.Image, error) {
	return jpeg.Decode(bytes.NewReader(data))
}

func scaleRect(r image.Rectangle, k float64) image.Rectangle {
	return image.Rect(int(float64(r.Min.X)*k), int(float64(r.Min.Y)*k), int(float64(r.Max.X)*k), int(float64(r.Max.Y)*k))
}

// handleKey acts on a key press and reports whether to quit.
func (s *screen) handleKey(ctx context.Context, keysym uint32) bool {
	log := logrus.WithField("keysym", keysym)
	switch keysym {
	case keySpace:
		s.b.TakePhoto()
	case keyS:
		s.b.StartSession()
	case key2:
		s.b.SetMode(mode.TwoPhoto)
	case key4:
		s.b.SetMode(mode.FourPhoto)
	case keyF:
		s.b.SetFilter(s.b.Status().Filter.Next())
	case keyM:
		s.b.SetMirror(!s.b.Status().Mirror)
	case keyR:
		s.b.Reset()
		if s.b.Status().CameraErr != nil {
			if err := s.b.Retry(ctx); err != nil {
				log.WithError(err).Warn("Camera retry failed")
			}
		}
	case keyW:
		if path, err := s.b.Save(s.outputDir); err != nil {
			log.WithError(err).Warn("Nothing saved")
		} else {
			log.WithField("path", path).Info("Saved")
		}
	case keyQ, keyEscape:
		return true
	}
	return false
}
