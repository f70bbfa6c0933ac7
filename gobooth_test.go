package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/drummonds/gobooth/internal/booth"
	"github.com/drummonds/gobooth/internal/capture"
	"github.com/drummonds/gobooth/internal/config"
	"github.com/drummonds/gobooth/internal/filter"
	"github.com/drummonds/gobooth/internal/mode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T) (*console, *bytes.Buffer) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{200, 60, 60, 255}), image.Point{}, draw.Src)
	cam := capture.NewCamera(capture.ImagesOpener(time.Millisecond, img), capture.Preferred, capture.Fallback)
	require.NoError(t, cam.Start(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, cam.WaitReady(ctx))

	b := booth.New(cam, booth.Options{Title: "Test strip"})
	t.Cleanup(func() { b.Close() })
	var out bytes.Buffer
	return newConsole(b, &out, t.TempDir()), &out
}

func TestConsoleTakesAStrip(t *testing.T) {
	c, out := newTestConsole(t)
	ctx := context.Background()

	assert.False(t, c.process(ctx, "save"))
	assert.Contains(t, out.String(), "Nothing to save yet")

	for i := 0; i < 2; i++ {
		assert.False(t, c.process(ctx, "shot"))
		for j := 0; j < 3; j++ {
			c.b.Tick()
			c.report()
		}
	}
	assert.Contains(t, out.String(), "3...")
	assert.Contains(t, out.String(), "📸 Photo 2 of 2")

	c.b.Flush()
	c.report()
	assert.Contains(t, out.String(), "Collage ready")

	out.Reset()
	assert.False(t, c.process(ctx, "save"))
	require.True(t, strings.HasPrefix(out.String(), "Saved "), out.String())
	path := strings.TrimSpace(strings.TrimPrefix(out.String(), "Saved "))
	_, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, c.outputDir, filepath.Dir(path))

	out.Reset()
	c.process(ctx, "shot")
	assert.Contains(t, out.String(), "Can't take a photo now")
}

func TestConsoleSettings(t *testing.T) {
	c, out := newTestConsole(t)
	ctx := context.Background()

	c.process(ctx, "mode 4")
	assert.Equal(t, mode.FourPhoto, c.b.Status().Mode)
	c.process(ctx, "filter vintage")
	assert.Equal(t, filter.Vintage, c.b.Status().Filter)
	c.process(ctx, "filter")
	assert.Equal(t, filter.BlackWhite, c.b.Status().Filter)
	c.process(ctx, "title Office party")
	assert.Equal(t, "Office party", c.b.Status().Title)
	c.process(ctx, "mirror on")
	assert.True(t, c.b.Status().Mirror)
	c.process(ctx, "mirror")
	assert.False(t, c.b.Status().Mirror)

	c.process(ctx, "session")
	assert.Contains(t, out.String(), "Next photo in 5...")
	c.process(ctx, "reset")
	assert.Equal(t, 0, c.b.Status().Countdown)

	c.process(ctx, "dance")
	assert.Contains(t, out.String(), "Unknown command: dance")
	assert.False(t, c.process(ctx, "   "))
	assert.True(t, c.process(ctx, "quit"))
}

func TestRunQuitsOnEOF(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	f, err := os.Create(filepath.Join(dir, "still.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	cfg := config.Default()
	cfg.SourceDir = dir
	cfg.OutputDir = t.TempDir()
	var out bytes.Buffer
	err = run(context.Background(), cfg, strings.NewReader("status\nhelp\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Commands:")
	assert.Contains(t, out.String(), "title: 🌞 Day")
}
