package filter

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/disintegration/gift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onePixel(r, g, b, a uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = r, g, b, a
	return img
}

func randomImage(seed int64, w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng.Read(img.Pix)
	return img
}

func clone(img *image.RGBA) *image.RGBA {
	c := *img
	c.Pix = append([]uint8(nil), img.Pix...)
	return &c
}

func TestNoneIsIdentity(t *testing.T) {
	img := randomImage(1, 17, 9)
	want := clone(img)
	Apply(None, img)
	assert.Equal(t, want.Pix, img.Pix)
}

func TestWarm(t *testing.T) {
	img := onePixel(100, 100, 100, 200)
	Apply(Warm, img)
	assert.Equal(t, []uint8{120, 110, 100, 200}, img.Pix)

	img = onePixel(250, 240, 7, 255)
	Apply(Warm, img)
	assert.Equal(t, []uint8{255, 255, 7, 255}, img.Pix)
}

func TestCool(t *testing.T) {
	img := onePixel(10, 20, 100, 255)
	Apply(Cool, img)
	assert.Equal(t, []uint8{10, 20, 120, 255}, img.Pix)

	img = onePixel(10, 20, 230, 255)
	Apply(Cool, img)
	assert.Equal(t, []uint8{10, 20, 255, 255}, img.Pix)
}

func TestVintage(t *testing.T) {
	img := onePixel(30, 60, 90, 255)
	Apply(Vintage, img)
	assert.Equal(t, []uint8{100, 80, 40, 255}, img.Pix)

	// avg 5 drives blue below zero
	img = onePixel(5, 5, 5, 128)
	Apply(Vintage, img)
	assert.Equal(t, []uint8{45, 25, 0, 128}, img.Pix)

	img = onePixel(250, 250, 250, 255)
	Apply(Vintage, img)
	assert.Equal(t, []uint8{255, 255, 230, 255}, img.Pix)
}

func TestBlackWhite(t *testing.T) {
	img := onePixel(255, 255, 255, 255)
	Apply(BlackWhite, img)
	assert.Equal(t, []uint8{255, 255, 255, 255}, img.Pix)

	img = onePixel(255, 0, 0, 90)
	Apply(BlackWhite, img)
	// 255*0.299 = 76.245
	assert.Equal(t, []uint8{76, 76, 76, 90}, img.Pix)
}

func TestChannelsStayInRangeAndAlphaKept(t *testing.T) {
	for _, k := range All() {
		img := randomImage(int64(k)+7, 32, 32)
		before := clone(img)
		Apply(k, img)
		for i := 3; i < len(img.Pix); i += 4 {
			require.Equal(t, before.Pix[i], img.Pix[i], "%v alpha at %d", k, i)
		}
	}
}

func TestDeterministic(t *testing.T) {
	for _, k := range All() {
		a := randomImage(99, 20, 20)
		b := clone(a)
		Apply(k, a)
		Apply(k, b)
		assert.Equal(t, a.Pix, b.Pix, k.String())
	}
}

func TestApplyRespectsSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 100
	}
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	Apply(Cool, sub)
	assert.Equal(t, color.RGBA{100, 100, 120, 100}, img.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{100, 100, 100, 100}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{100, 100, 100, 100}, img.RGBAAt(3, 3))
}

func TestParse(t *testing.T) {
	assert.Equal(t, BlackWhite, Parse("B&W"))
	assert.Equal(t, BlackWhite, Parse("bw"))
	assert.Equal(t, Warm, Parse(" Warm "))
	assert.Equal(t, None, Parse("original"))
	assert.Equal(t, None, Parse("sepia"))
}

func TestNextCycles(t *testing.T) {
	k := None
	for range All() {
		k = k.Next()
	}
	assert.Equal(t, None, k)
	assert.Equal(t, Warm, Kind(77).Next().Next())
}

func TestKindInGiftPipeline(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 200, 100, 50, 255
	}
	g := gift.New(BlackWhite)
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	// 200*0.299+100*0.587+50*0.114 = 124.2
	assert.Equal(t, color.RGBA{124, 124, 124, 255}, dst.RGBAAt(2, 1))
}
