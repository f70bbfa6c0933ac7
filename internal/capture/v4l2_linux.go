//go:build linux

package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/sirupsen/logrus"
	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"
	"golang.org/x/sys/unix"
)

// DefaultDevice is the first V4L2 capture device.
const DefaultDevice = "/dev/video0"

type v4l2Stream struct {
	dev    *device.Device
	pix    v4l2.PixFormat
	cancel context.CancelFunc
}

// V4L2Opener opens a webcam through the Video4Linux2 API, asking for YUYV
// frames and accepting MJPEG if that is what the driver settles on.
func V4L2Opener(path string) Opener {
	return func(ctx context.Context, res Resolution) (Stream, error) {
		// Gives a clear permission error before the driver gets involved
		if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
			return nil, fmt.Errorf("camera %s: %w", path, err)
		}
		dev, err := device.Open(path, device.WithPixFormat(v4l2.PixFormat{
			PixelFormat: v4l2.PixelFmtYUYV,
			Width:       uint32(res.Width),
			Height:      uint32(res.Height),
		}))
		if err != nil {
			return nil, fmt.Errorf("open %s at %v: %w", path, res, err)
		}
		pix, err := dev.GetPixFormat()
		if err != nil {
			dev.Close()
			return nil, fmt.Errorf("read pixel format of %s: %w", path, err)
		}
		if pix.PixelFormat != v4l2.PixelFmtYUYV && pix.PixelFormat != v4l2.PixelFmtMJPEG {
			dev.Close()
			return nil, fmt.Errorf("%s: unsupported pixel format %v", path, pix.PixelFormat)
		}
		if pix.Width == 0 || pix.Height == 0 {
			dev.Close()
			return nil, fmt.Errorf("%s: device reports no frame size", path)
		}

		sctx, cancel := context.WithCancel(ctx)
		if err := dev.Start(sctx); err != nil {
			cancel()
			dev.Close()
			return nil, fmt.Errorf("start stream on %s: %w", path, err)
		}
		logrus.WithFields(logrus.Fields{
			"device":    path,
			"requested": res.String(),
			"width":     pix.Width,
			"height":    pix.Height,
			"mjpeg":     pix.PixelFormat == v4l2.PixelFmtMJPEG,
		}).Info("V4L2 stream started")
		return &v4l2Stream{dev: dev, pix: pix, cancel: cancel}, nil
	}
}

func (s *v4l2Stream) Next(ctx context.Context) (image.Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame, ok := <-s.dev.GetOutput():
		if !ok {
			return nil, errors.New("v4l2 output closed")
		}
		if len(frame) == 0 {
			return nil, nil
		}
		var img image.Image
		var err error
		if s.pix.PixelFormat == v4l2.PixelFmtMJPEG {
			img, err = jpeg.Decode(bytes.NewReader(frame))
		} else {
			img, err = YUYVToImage(frame, int(s.pix.Width), int(s.pix.Height), int(s.pix.BytesPerLine))
		}
		if err != nil {
			// A torn frame is dropped, the next one will do
			logrus.WithError(err).Debug("Dropping undecodable frame")
			return nil, nil
		}
		return img, nil
	}
}

func (s *v4l2Stream) Size() Resolution {
	return Resolution{Width: int(s.pix.Width), Height: int(s.pix.Height)}
}

func (s *v4l2Stream) Close() error {
	s.cancel()
	return s.dev.Close()
}
