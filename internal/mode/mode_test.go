package mode

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanvasSizeTwoPhoto(t *testing.T) {
	// 480+2*20+2*25 wide, 2*270+3*20+2*25+90 high
	assert.Equal(t, image.Pt(570, 740), TwoPhoto.CanvasSize())
}

func TestCanvasSizeFourPhoto(t *testing.T) {
	// 2*300+3*20+2*25 wide, 2*300+3*20+2*25+90 high
	assert.Equal(t, image.Pt(710, 800), FourPhoto.CanvasSize())
}

func TestSlotFourPhotoGrid(t *testing.T) {
	want := map[int]image.Point{
		0: {45, 135},
		1: {365, 135},
		2: {45, 455},
		3: {365, 455},
	}
	for idx, pt := range want {
		slot := FourPhoto.Slot(idx)
		assert.Equal(t, pt, slot.Min, "index %d", idx)
		assert.Equal(t, image.Pt(300, 300), slot.Size())
	}
}

func TestSlotTwoPhotoStack(t *testing.T) {
	assert.Equal(t, image.Rect(45, 135, 525, 405), TwoPhoto.Slot(0))
	assert.Equal(t, image.Rect(45, 425, 525, 695), TwoPhoto.Slot(1))
}

func TestSlotsInsideCanvas(t *testing.T) {
	for _, m := range All() {
		canvas := image.Rectangle{Max: m.CanvasSize()}
		for i := 0; i < m.TotalPhotos(); i++ {
			assert.True(t, m.Slot(i).In(canvas), "%v slot %d", m, i)
		}
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Mode{
		"2":          TwoPhoto,
		"TWO_PHOTO":  TwoPhoto,
		"4":          FourPhoto,
		"Four-Photo": FourPhoto,
		"FOUR_PHOTO": FourPhoto,
		"bogus":      TwoPhoto,
		"":           TwoPhoto,
	}
	for in, want := range cases {
		assert.Equal(t, want, Parse(in), in)
	}
}

func TestUnknownModeFallsBack(t *testing.T) {
	m := Mode(42)
	assert.Equal(t, 2, m.TotalPhotos())
	assert.Equal(t, Vertical, m.Arrangement())
	assert.Equal(t, TwoPhoto.Geometry(), m.Geometry())
}

func TestModeProperties(t *testing.T) {
	assert.Equal(t, 2, TwoPhoto.TotalPhotos())
	assert.Equal(t, 4, FourPhoto.TotalPhotos())
	assert.InDelta(t, 16.0/9.0, TwoPhoto.AspectRatio(), 1e-12)
	assert.Equal(t, 1.0, FourPhoto.AspectRatio())
	assert.Equal(t, Grid, FourPhoto.Arrangement())
}
