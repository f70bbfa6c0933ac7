package main

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/drummonds/gobooth/internal/booth"
	"github.com/drummonds/gobooth/internal/capture"
	"github.com/drummonds/gobooth/internal/filter"
	"github.com/drummonds/gobooth/internal/mode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScreen(t *testing.T) *screen {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{0, 200, 0, 255}), image.Point{}, draw.Src)
	cam := capture.NewCamera(capture.ImagesOpener(time.Millisecond, img), capture.Preferred, capture.Fallback)
	require.NoError(t, cam.Start(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, cam.WaitReady(ctx))

	b := booth.New(cam, booth.Options{Title: "Preview"})
	t.Cleanup(func() { b.Close() })
	s, err := newScreen(b, t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLivePreviewFitsArea(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	pv, err := livePreview(img, booth.Status{Mode: mode.FourPhoto}, image.Rect(0, 0, 640, 480))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 480, 480), pv.Bounds())

	pv, err = livePreview(img, booth.Status{Mode: mode.TwoPhoto}, image.Rect(0, 0, 640, 480))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 640, 360), pv.Bounds())

	_, err = livePreview(image.NewRGBA(image.Rectangle{}), booth.Status{}, image.Rect(0, 0, 640, 480))
	assert.Error(t, err)
}

func TestLivePreviewFilters(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{200, 100, 50, 255}), image.Point{}, draw.Src)
	pv, err := livePreview(img, booth.Status{Mode: mode.FourPhoto, Filter: filter.BlackWhite}, image.Rect(0, 0, 32, 32))
	require.NoError(t, err)
	c := pv.RGBAAt(16, 16)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
}

func TestRenderShowsPreviewAndCountdown(t *testing.T) {
	s := newTestScreen(t)
	s.Render()
	c := s.Buffer.RGBAAt(s.preview.Min.X+previewW/2, s.preview.Min.Y+previewH/2)
	assert.Greater(t, c.G, uint8(150), "live green frame in the preview")

	require.True(t, s.handleKey(context.Background(), keySpace) == false)
	s.Render()
	c = s.Buffer.RGBAAt(s.preview.Min.X+5, s.preview.Min.Y+previewH/2)
	assert.Less(t, c.G, uint8(150), "countdown dims the preview")
}

func TestKeys(t *testing.T) {
	s := newTestScreen(t)
	ctx := context.Background()
	s.handleKey(ctx, key4)
	assert.Equal(t, mode.FourPhoto, s.b.Status().Mode)
	s.handleKey(ctx, keyF)
	assert.Equal(t, filter.Warm, s.b.Status().Filter)
	s.handleKey(ctx, keyM)
	assert.True(t, s.b.Status().Mirror)
	s.handleKey(ctx, keyS)
	assert.True(t, s.b.Status().Countdown > 0)
	s.handleKey(ctx, keyR)
	assert.Equal(t, 0, s.b.Status().Countdown)
	s.handleKey(ctx, key2)
	assert.Equal(t, mode.TwoPhoto, s.b.Status().Mode)
	assert.False(t, s.handleKey(ctx, keyW))
	assert.True(t, s.handleKey(ctx, keyQ))
	assert.True(t, s.handleKey(ctx, keyEscape))
}

func TestRenderStripWithCollage(t *testing.T) {
	s := newTestScreen(t)
	for i := 0; i < 2; i++ {
		require.True(t, s.b.TakePhoto())
		for j := 0; j < 3; j++ {
			s.b.Tick()
		}
	}
	s.b.Flush()
	s.Render()
	c := s.Buffer.RGBAAt(s.strip.Min.X+s.strip.Dx()/2, s.strip.Min.Y+s.strip.Dy()/2)
	assert.Greater(t, c.G, c.R, "green photos visible in the strip")
}

func TestLivePreviewAlwaysMirrored(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(img, image.Rect(0, 0, 32, 64), image.NewUniform(color.RGBA{255, 0, 0, 255}), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(32, 0, 64, 64), image.NewUniform(color.RGBA{0, 0, 255, 255}), image.Point{}, draw.Src)
	for _, mirror := range []bool{false, true} {
		pv, err := livePreview(img, booth.Status{Mode: mode.FourPhoto, Mirror: mirror}, image.Rect(0, 0, 64, 64))
		require.NoError(t, err)
		left, right := pv.RGBAAt(4, 32), pv.RGBAAt(59, 32)
		assert.Greater(t, left.B, left.R, "mirror=%v", mirror)
		assert.Greater(t, right.R, right.B, "mirror=%v", mirror)
	}
}

func TestRenderStripCachesThumbnails(t *testing.T) {
	s := newTestScreen(t)
	require.True(t, s.b.TakePhoto())
	for j := 0; j < 3; j++ {
		s.b.Tick()
	}
	s.Render()
	require.Len(t, s.thumbs, 1)
	first := s.thumbs[0]
	s.Render()
	assert.Same(t, first, s.thumbs[0], "second redraw reuses the thumbnail")
	c := s.Buffer.RGBAAt(s.strip.Min.X+s.strip.Dx()/2, s.strip.Min.Y+s.strip.Dy()/4)
	assert.Greater(t, c.G, c.R, "green photo visible in the first slot")

	s.b.Reset()
	s.Render()
	assert.Empty(t, s.thumbs)
}
