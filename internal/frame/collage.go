package frame

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"runtime"
	"time"

	_ "image/png"

	"github.com/drummonds/gobooth/internal/drawing"
	"github.com/drummonds/gobooth/internal/mode"
	"github.com/drummonds/gobooth/internal/panel"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	JPEGQuality     = 90
	TimestampLayout = "1/2/2006, 3:04:05 PM"

	titleBaseline     = 40
	timestampBaseline = 65
)

var ErrIncomplete = errors.New("collage needs one frame per photo slot")

// Request is everything a collage is made from.
type Request struct {
	Frames    [][]byte // encoded images in capture order
	Mode      mode.Mode
	Title     string
	At        time.Time
	SessionID string
}

// Collage is a finished photo strip.
type Collage struct {
	Image       *image.RGBA
	JPEG        []byte
	Mode        mode.Mode
	Title       string
	GeneratedAt time.Time
	SessionID   string
	Missing     []int // indices of frames that failed to decode
}

// FileName is the name a collage saved at t is written as.
func FileName(t time.Time) string {
	return fmt.Sprintf("photo-booth-%d.jpg", t.UnixMilli())
}

// Filename names the collage by when it was generated.
func (c *Collage) Filename() string {
	return FileName(c.GeneratedAt)
}

// Compose lays out the frames of req on a new picture frame.
//
// Every frame is decoded concurrently. A frame that fails to decode is
// logged and its slot left blank; the collage is only finished once every
// decode has returned. Photos go in the slot of their capture index whatever
// order the decodes finish in.
func Compose(ctx context.Context, req Request) (*Collage, error) {
	total := req.Mode.TotalPhotos()
	if len(req.Frames) != total {
		return nil, fmt.Errorf("%w: have %d, %v takes %d", ErrIncomplete, len(req.Frames), req.Mode, total)
	}
	log := logrus.WithFields(logrus.Fields{
		"function": "Compose",
		"mode":     req.Mode.String(),
		"frames":   total,
	})

	pf := NewPictureFrame(req.Mode)
	if err := addHeader(pf, req.Title, req.At); err != nil {
		return nil, err
	}

	imgs := make([]image.Image, total)
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, data := range req.Frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				log.WithFields(logrus.Fields{
					"index": i,
					"error": err,
				}).Warn("Failed to load photo, leaving its slot blank")
				return nil
			}
			imgs[i] = img
			return nil
		})
	}
	// Decode failures leave a blank slot, so only cancellation fails the wait.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &Collage{
		Mode:        req.Mode,
		Title:       req.Title,
		GeneratedAt: req.At,
		SessionID:   req.SessionID,
	}
	for i, img := range imgs {
		if img == nil {
			c.Missing = append(c.Missing, i)
			continue
		}
		p, err := panel.NewPhotoPanel(img, i, req.Mode)
		if err != nil {
			return nil, err
		}
		pf.AddPanel(p)
	}
	pf.Render()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, pf.Buffer, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode collage: %w", err)
	}
	c.Image = pf.Buffer
	c.JPEG = buf.Bytes()
	log.WithFields(logrus.Fields{
		"bytes":   len(c.JPEG),
		"missing": len(c.Missing),
	}).Debug("Collage composed")
	return c, nil
}

func addHeader(pf *PictureFrame, title string, at time.Time) error {
	cx := float64(pf.W) / 2
	t, err := panel.NewTextPanel(title, true, 24, cx, titleBaseline, drawing.ColourNameToRGBA["title"])
	if err != nil {
		return err
	}
	pf.AddPanel(t)
	ts, err := panel.NewTextPanel(at.Format(TimestampLayout), false, 14, cx, timestampBaseline, drawing.ColourNameToRGBA["timestamp"])
	if err != nil {
		return err
	}
	pf.AddPanel(ts)
	return nil
}
