package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/drummonds/gobooth/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var teamDay = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func writeStills(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 400, 300))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{uint8(40 * i), 120, 200, 255}), image.Point{}, draw.Src)
		path := filepath.Join(dir, string(rune('a'+i))+".png")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
		paths = append(paths, path)
	}
	return paths
}

func TestMakeCollage(t *testing.T) {
	c, err := makeCollage(context.Background(), options{mode: "4", filter: "bw"}, writeStills(t, 4), teamDay)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 710, 800), c.Image.Bounds())
	assert.Equal(t, "🌞 Day 61/366 in 2024", c.Title)
	assert.Empty(t, c.Missing)

	// black and white photos have no colour left in them
	r, g, b, _ := c.Image.At(45+150, 135+150).RGBA()
	assert.InDelta(t, int(r>>8), int(g>>8), 3)
	assert.InDelta(t, int(g>>8), int(b>>8), 3)
}

func TestMakeCollageWrongCount(t *testing.T) {
	_, err := makeCollage(context.Background(), options{mode: "2"}, writeStills(t, 3), teamDay)
	assert.ErrorIs(t, err, frame.ErrIncomplete)
}

func TestMakeCollageBadFile(t *testing.T) {
	paths := writeStills(t, 1)
	bad := filepath.Join(t.TempDir(), "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not a jpeg"), 0o644))
	_, err := makeCollage(context.Background(), options{mode: "2"}, append(paths, bad), teamDay)
	assert.Error(t, err)
}

func TestCommandWritesFile(t *testing.T) {
	out := t.TempDir()
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs(append([]string{"-t", "Team day", "-o", out}, writeStills(t, 2)...))
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	path := strings.TrimSpace(stdout.String())
	assert.Equal(t, out, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "photo-booth-"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 570, 740), img.Bounds())
}
