package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
)

// FrameInterval is how often a still stream hands out a frame, about 30fps.
const FrameInterval = 33 * time.Millisecond

// stillStream replays a fixed set of images in a loop.
type stillStream struct {
	imgs     []image.Image
	interval time.Duration
	next     int
	started  bool
}

func (s *stillStream) Next(ctx context.Context) (image.Image, error) {
	if s.started && s.interval > 0 {
		t := time.NewTimer(s.interval)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.started = true
	img := s.imgs[s.next%len(s.imgs)]
	s.next++
	return img, nil
}

func (s *stillStream) Size() Resolution {
	b := s.imgs[0].Bounds()
	return Resolution{Width: b.Dx(), Height: b.Dy()}
}

func (s *stillStream) Close() error { return nil }

// ImagesOpener replays imgs as if they came from a camera. The requested
// resolution is ignored.
func ImagesOpener(interval time.Duration, imgs ...image.Image) Opener {
	return func(ctx context.Context, res Resolution) (Stream, error) {
		if len(imgs) == 0 {
			return nil, errors.New("no images to replay")
		}
		for i, img := range imgs {
			if img == nil {
				return nil, fmt.Errorf("image %d to replay is nil", i)
			}
		}
		return &stillStream{imgs: imgs, interval: interval}, nil
	}
}

var stillExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// LoadImages decodes every JPEG, PNG and WebP file in dir, in name order.
// Files that fail to decode are logged and skipped.
func LoadImages(dir string) ([]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read still directory: %w", err)
	}
	var imgs []image.Image
	for _, e := range entries {
		if e.IsDir() || !stillExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		img, err := LoadImage(filepath.Join(dir, e.Name()))
		if err != nil {
			logrus.WithError(err).WithField("file", e.Name()).Warn("Skipping still")
			continue
		}
		imgs = append(imgs, img)
	}
	if len(imgs) == 0 {
		return nil, fmt.Errorf("no usable images in %s", dir)
	}
	return imgs, nil
}

func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("can't decode %s image %s: %w", format, path, err)
	}
	return img, nil
}

// DirOpener replays the stills in dir. The directory is read on every open
// so new files are picked up by a retry.
func DirOpener(dir string, interval time.Duration) Opener {
	return func(ctx context.Context, res Resolution) (Stream, error) {
		imgs, err := LoadImages(dir)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"dir":    dir,
			"stills": len(imgs),
		}).Debug("Opened still stream")
		return &stillStream{imgs: imgs, interval: interval}, nil
	}
}
