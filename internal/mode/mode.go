/*
A mode selects how many photos make up a strip and how they are laid out.

Two photo strips are 16:9 frames stacked vertically, four photo strips are
square frames in a 2x2 grid. The geometry of the finished collage follows
from the mode alone.
*/
package mode

import (
	"image"
	"strings"
)

type Mode int

const (
	TwoPhoto Mode = iota
	FourPhoto
)

// Arrangement is how photos are placed on the collage.
type Arrangement int

const (
	Vertical Arrangement = iota
	Grid
)

func (a Arrangement) String() string {
	if a == Grid {
		return "grid"
	}
	return "vertical"
}

// Geometry holds the collage layout parameters of a mode, in pixels.
type Geometry struct {
	PhotoWidth   int
	PhotoHeight  int
	Padding      int
	BorderWidth  int
	HeaderHeight int
	CornerRadius int
	BadgeSize    int
	BadgeRadius  int
}

var geometries = map[Mode]Geometry{
	TwoPhoto: {
		PhotoWidth:   480, // 16:9
		PhotoHeight:  270,
		Padding:      20,
		BorderWidth:  25,
		HeaderHeight: 90,
		CornerRadius: 15,
		BadgeSize:    30,
		BadgeRadius:  15,
	},
	FourPhoto: {
		PhotoWidth:   300,
		PhotoHeight:  300,
		Padding:      20,
		BorderWidth:  25,
		HeaderHeight: 90,
		CornerRadius: 15,
		BadgeSize:    30,
		BadgeRadius:  15,
	},
}

// All lists the modes in menu order.
func All() []Mode {
	return []Mode{TwoPhoto, FourPhoto}
}

// Parse maps a user supplied name onto a mode. Unknown names give TwoPhoto.
func Parse(name string) Mode {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "4", "four", "four-photo", "four_photo", "fourphoto", "grid", "square":
		return FourPhoto
	default:
		return TwoPhoto
	}
}

func (m Mode) valid() Mode {
	if m == FourPhoto {
		return FourPhoto
	}
	return TwoPhoto
}

func (m Mode) String() string {
	if m.valid() == FourPhoto {
		return "four-photo"
	}
	return "two-photo"
}

// Label is the menu text for the mode.
func (m Mode) Label() string {
	if m.valid() == FourPhoto {
		return "4 Photos (Square)"
	}
	return "2 Photos (16:9)"
}

func (m Mode) TotalPhotos() int {
	if m.valid() == FourPhoto {
		return 4
	}
	return 2
}

// AspectRatio is the width/height ratio each captured frame is cropped to.
func (m Mode) AspectRatio() float64 {
	if m.valid() == FourPhoto {
		return 1
	}
	return 16.0 / 9.0
}

func (m Mode) Arrangement() Arrangement {
	if m.valid() == FourPhoto {
		return Grid
	}
	return Vertical
}

func (m Mode) Geometry() Geometry {
	return geometries[m.valid()]
}

// CanvasSize is the size of the finished collage.
func (m Mode) CanvasSize() image.Point {
	g := m.Geometry()
	h := 2*g.PhotoHeight + 3*g.Padding + 2*g.BorderWidth + g.HeaderHeight
	if m.Arrangement() == Grid {
		return image.Pt(2*g.PhotoWidth+3*g.Padding+2*g.BorderWidth, h)
	}
	return image.Pt(g.PhotoWidth+2*g.Padding+2*g.BorderWidth, h)
}

// Slot is where the photo with the given capture index goes on the collage.
func (m Mode) Slot(index int) image.Rectangle {
	g := m.Geometry()
	var x, y int
	if m.Arrangement() == Grid {
		row, col := index/2, index%2
		x = g.BorderWidth + g.Padding + col*(g.PhotoWidth+g.Padding)
		y = g.HeaderHeight + g.BorderWidth + g.Padding + row*(g.PhotoHeight+g.Padding)
	} else {
		x = g.BorderWidth + g.Padding
		y = g.HeaderHeight + g.BorderWidth + g.Padding + index*(g.PhotoHeight+g.Padding)
	}
	return image.Rect(x, y, x+g.PhotoWidth, y+g.PhotoHeight)
}
