/*
Package booth is the controller a front end drives.

A Booth owns the photo mode, filter, strip title, the captured frames and
the finished collage. It is told about time by Tick, once a second, and
asks its session machine what to do. All methods are safe to call from
several goroutines; composition runs in the background and is published
only if nothing was cleared in the meantime.
*/
package booth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/gift"
	"github.com/drummonds/gobooth/internal/capture"
	"github.com/drummonds/gobooth/internal/drawing"
	"github.com/drummonds/gobooth/internal/filter"
	"github.com/drummonds/gobooth/internal/frame"
	"github.com/drummonds/gobooth/internal/mode"
	"github.com/drummonds/gobooth/internal/session"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrNoCollage = errors.New("no collage yet")

// CapturedFrame is one photo of the strip, already cropped and filtered.
type CapturedFrame struct {
	Index      int
	Mode       mode.Mode
	Filter     filter.Kind
	Data       []byte // JPEG
	CapturedAt time.Time
}

type Options struct {
	Mode   mode.Mode
	Filter filter.Kind
	Title  string // empty means DefaultTitle
	Mirror bool
	// Now defaults to time.Now.
	Now func() time.Time
}

type Booth struct {
	source capture.Source
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	machine    *session.Machine
	mode       mode.Mode
	filter     filter.Kind
	title      string
	mirror     bool
	frames     []CapturedFrame
	collage    *frame.Collage
	composing  bool
	composeErr error
	generation uint64 // bumped by every compose and clear
	strip      uint64 // bumped only when the frames are cleared
	sessionID  string

	compose func(context.Context, frame.Request) (*frame.Collage, error)
}

func New(source capture.Source, opts Options) *Booth {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Booth{
		source:  source,
		now:     now,
		ctx:     ctx,
		cancel:  cancel,
		machine: session.NewMachine(),
		mode:    mode.Parse(opts.Mode.String()),
		filter:  filter.Parse(opts.Filter.String()),
		title:   opts.Title,
		mirror:  opts.Mirror,
		compose: frame.Compose,
	}
	if b.title == "" {
		b.title = DefaultTitle(now())
	}
	return b
}

// Source is the capture source the booth takes photos from.
func (b *Booth) Source() capture.Source { return b.source }

func (b *Booth) log(function string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"function": function,
		"mode":     b.mode.String(),
		"frames":   len(b.frames),
	})
}

// full must be called with mu held.
func (b *Booth) full() bool {
	return len(b.frames) >= b.mode.TotalPhotos()
}

// TakePhoto arms the single shot countdown. It reports whether the request
// was accepted: the source must be ready, nothing counting down and the
// strip not yet full.
func (b *Booth) TakePhoto() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full() {
		b.log("TakePhoto").Debug("Strip is full, reset to start again")
		return false
	}
	return b.machine.RequestShot(b.source.Ready())
}

// StartSession starts an automated session that fills the rest of the strip.
func (b *Booth) StartSession() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full() {
		b.log("StartSession").Debug("Strip is full, reset to start again")
		return false
	}
	remaining := b.mode.TotalPhotos() - len(b.frames)
	if !b.machine.StartSession(b.source.Ready(), remaining) {
		return false
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	b.sessionID = id.String()
	b.log("StartSession").WithFields(logrus.Fields{
		"session": b.sessionID,
		"photos":  remaining,
	}).Info("Session started")
	return true
}

// Tick advances any countdown by a second, capturing when one runs out.
func (b *Booth) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.machine.Tick() != session.ActionCapture {
		return
	}
	inSession := b.machine.InSession()
	ok := b.captureLocked()
	if inSession {
		b.machine.Captured(ok)
	}
	if ok && b.full() {
		if b.machine.InSession() {
			b.machine.Reset()
		}
		b.composeLocked()
	}
}

// captureLocked crops, filters and stores the latest frame. A source
// without a usable frame is skipped silently.
func (b *Booth) captureLocked() bool {
	log := b.log("capture")
	if b.full() {
		return false
	}
	img, err := b.source.Frame()
	if err != nil {
		log.WithError(err).Debug("No frame to capture")
		return false
	}
	data, err := Process(img, b.mode, b.filter, b.mirror)
	if err != nil {
		log.WithError(err).Debug("Capture skipped")
		return false
	}
	b.frames = append(b.frames, CapturedFrame{
		Index:      len(b.frames),
		Mode:       b.mode,
		Filter:     b.filter,
		Data:       data,
		CapturedAt: b.now(),
	})
	log.WithFields(logrus.Fields{
		"index":  len(b.frames) - 1,
		"filter": b.filter.String(),
		"bytes":  len(data),
	}).Info("Photo captured")
	return true
}

// Pipeline is the crop and mirror a capture goes through before filtering.
func Pipeline(bounds image.Rectangle, m mode.Mode, mirror bool) (*gift.GIFT, error) {
	r, ok := drawing.CropBounds(bounds, m.AspectRatio())
	if !ok {
		return nil, fmt.Errorf("frame %v has no usable size", bounds)
	}
	g := gift.New(gift.Crop(r))
	if mirror {
		g.Add(gift.FlipHorizontal())
	}
	return g, nil
}

// Process crops img to the aspect ratio of m, filters it and encodes it as
// a JPEG the way a captured frame is stored.
func Process(img image.Image, m mode.Mode, k filter.Kind, mirror bool) ([]byte, error) {
	g, err := Pipeline(img.Bounds(), m, mirror)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	filter.Apply(k, dst)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: frame.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), nil
}

// composeLocked starts composing the current frames in the background.
func (b *Booth) composeLocked() {
	b.generation++
	gen := b.generation
	req := frame.Request{
		Frames:    make([][]byte, len(b.frames)),
		Mode:      b.mode,
		Title:     b.title,
		At:        b.now(),
		SessionID: b.sessionID,
	}
	for i, f := range b.frames {
		req.Frames[i] = f.Data
	}
	b.composing = true
	b.composeErr = nil

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		c, err := b.compose(b.ctx, req)

		b.mu.Lock()
		defer b.mu.Unlock()
		log := b.log("compose").WithField("generation", gen)
		if gen != b.generation {
			log.Debug("Discarding stale collage")
			return
		}
		b.composing = false
		if err != nil {
			b.composeErr = err
			log.WithError(err).Error("Collage failed")
			return
		}
		b.collage = c
		log.WithField("file", c.Filename()).Info("Collage ready")
	}()
}

// clearLocked drops the frames and collage and stops any countdown.
func (b *Booth) clearLocked() {
	b.machine.Reset()
	b.frames = nil
	b.collage = nil
	b.composing = false
	b.composeErr = nil
	b.sessionID = ""
	b.generation++
	b.strip++
}

// SetMode switches the photo mode, clearing the strip.
func (b *Booth) SetMode(m mode.Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = mode.Parse(m.String())
	b.clearLocked()
	b.log("SetMode").Info("Mode changed")
}

// SetFilter changes the filter for the next captures. Photos already taken
// keep theirs.
func (b *Booth) SetFilter(k filter.Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = filter.Parse(k.String())
}

// SetTitle changes the strip title, an empty title restores the default.
// A finished strip is composed again under the new title.
func (b *Booth) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if title == "" {
		title = DefaultTitle(b.now())
	}
	if title == b.title {
		return
	}
	b.title = title
	if b.full() {
		b.collage = nil
		b.composeLocked()
	}
}

func (b *Booth) SetMirror(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mirror = on
}

// Reset clears the strip and cancels any countdown or session.
func (b *Booth) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearLocked()
	b.log("Reset").Info("Photos reset")
}

// Retry restarts the capture source, for after it failed to start.
func (b *Booth) Retry(ctx context.Context) error {
	b.mu.Lock()
	b.machine.Reset()
	b.mu.Unlock()
	return b.source.Start(ctx)
}

// Frames returns a copy of the captured frames.
func (b *Booth) Frames() []CapturedFrame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]CapturedFrame(nil), b.frames...)
}

// Collage returns the finished collage, ErrNoCollage until there is one,
// or the error the last composition failed with.
func (b *Booth) Collage() (*frame.Collage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.collage != nil {
		return b.collage, nil
	}
	if b.composeErr != nil {
		return nil, b.composeErr
	}
	return nil, ErrNoCollage
}

// Save writes the collage into dir, named by the time it is saved so that
// saving twice keeps both copies.
func (b *Booth) Save(dir string) (string, error) {
	c, err := b.Collage()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, frame.FileName(b.now()))
	if err := os.WriteFile(path, c.JPEG, 0o644); err != nil {
		return "", fmt.Errorf("save collage: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"function": "Save",
		"path":     path,
		"bytes":    len(c.JPEG),
	}).Info("Collage saved")
	return path, nil
}

// Flush waits for background compositions to finish.
func (b *Booth) Flush() {
	b.wg.Wait()
}

// Close abandons any composition and stops the source.
func (b *Booth) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.source.Stop()
}
