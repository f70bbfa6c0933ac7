/*
Package capture owns the live video feed a booth takes its photos from.

A Camera opens a Stream through an Opener, first at the preferred
resolution then at the fallback, and keeps the most recent frame. Only the
Camera starts and stops its stream.
*/
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotReady    = errors.New("capture: source not ready")
	ErrUnsupported = errors.New("capture: not supported on this platform")
)

// Source is a live feed of frames.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	// Ready is true once the feed has delivered a frame with a size.
	Ready() bool
	// Frame returns the latest frame. The image must not be modified.
	Frame() (image.Image, error)
	// Err is the reason the last Start failed, for showing to the user.
	Err() error
}

type Resolution struct {
	Width, Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

var (
	Preferred = Resolution{Width: 1920, Height: 1080}
	Fallback  = Resolution{Width: 640, Height: 480}
)

// Stream is an open feed at a negotiated resolution.
type Stream interface {
	// Next blocks until the next frame or ctx is done.
	Next(ctx context.Context) (image.Image, error)
	Size() Resolution
	Close() error
}

// Opener opens a stream asking for res. The stream may come back at a
// different size if the device cannot do res exactly.
type Opener func(ctx context.Context, res Resolution) (Stream, error)

type Camera struct {
	open      Opener
	preferred Resolution
	fallback  Resolution

	mu      sync.Mutex
	stream  Stream
	cancel  context.CancelFunc
	done    chan struct{}
	readyCh chan struct{}
	latest  image.Image
	ready   bool
	err     error
}

func NewCamera(open Opener, preferred, fallback Resolution) *Camera {
	return &Camera{
		open:      open,
		preferred: preferred,
		fallback:  fallback,
		readyCh:   make(chan struct{}),
	}
}

// Start opens the stream, falling back to the lower resolution when the
// preferred one fails. There is no retry beyond that; call Start again.
func (c *Camera) Start(ctx context.Context) error {
	if err := c.Stop(); err != nil {
		logrus.WithError(err).Warn("Closing previous camera stream")
	}
	log := logrus.WithFields(logrus.Fields{
		"function":  "Camera.Start",
		"preferred": c.preferred.String(),
	})

	stream, err := c.open(ctx, c.preferred)
	if err != nil {
		log.WithError(err).Warn("Camera access failed, trying fallback resolution")
		stream, err = c.open(ctx, c.fallback)
		if err != nil {
			err = fmt.Errorf("camera access failed: %w", err)
			log.WithError(err).Error("Fallback camera access failed")
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return err
		}
	}
	log.WithField("size", stream.Size().String()).Info("Camera stream opened")

	pctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	c.stream = stream
	c.cancel = cancel
	c.done = done
	c.err = nil
	c.mu.Unlock()

	go c.pump(pctx, stream, done)
	return nil
}

func (c *Camera) pump(ctx context.Context, stream Stream, done chan struct{}) {
	defer close(done)
	for {
		img, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logrus.WithError(err).Error("Camera stream ended")
				c.mu.Lock()
				c.err = fmt.Errorf("camera stream ended: %w", err)
				c.clearReady()
				c.mu.Unlock()
			}
			return
		}
		if img == nil || img.Bounds().Empty() {
			continue
		}
		c.mu.Lock()
		c.latest = img
		if !c.ready {
			c.ready = true
			select {
			case <-c.readyCh:
			default:
				close(c.readyCh)
			}
		}
		c.mu.Unlock()
	}
}

// Stop cancels the frame pump and closes the stream.
func (c *Camera) Stop() error {
	c.mu.Lock()
	stream, cancel, done := c.stream, c.cancel, c.done
	c.stream, c.cancel, c.done = nil, nil, nil
	c.mu.Unlock()

	if stream != nil {
		cancel()
		<-done
	}
	c.mu.Lock()
	c.clearReady()
	c.mu.Unlock()
	if stream == nil {
		return nil
	}
	return stream.Close()
}

// clearReady must be called with mu held.
func (c *Camera) clearReady() {
	if c.ready {
		c.readyCh = make(chan struct{})
	}
	c.ready = false
	c.latest = nil
}

func (c *Camera) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// WaitReady blocks until the first frame arrives or ctx is done.
func (c *Camera) WaitReady(ctx context.Context) error {
	c.mu.Lock()
	ch := c.readyCh
	c.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Camera) Frame() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return nil, ErrNotReady
	}
	return c.latest, nil
}

func (c *Camera) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

var _ Source = (*Camera)(nil)
