package drawing

import (
	"image"
	"image/color"
	"math"
)

// Crop is a crop rectangle in source pixel coordinates. The values are not
// rounded, a 16:9 crop of an odd sized source has fractional edges.
type Crop struct {
	X, Y          float64
	Width, Height float64
}

// CropRect works out the largest rectangle with the target aspect ratio
// (width/height) that fits centred inside a srcW x srcH source.
//
// ok is false when the source has no size yet, eg a camera stream that has
// not delivered its first frame, or the target ratio is not positive.
func CropRect(srcW, srcH int, target float64) (crop Crop, ok bool) {
	if srcW <= 0 || srcH <= 0 || !(target > 0) || math.IsInf(target, 0) {
		return Crop{}, false
	}
	w, h := float64(srcW), float64(srcH)
	if w/h > target {
		// Source is wider than target, use full height
		crop.Height = h
		crop.Width = h * target
	} else {
		crop.Width = w
		crop.Height = w / target
	}
	crop.X = (w - crop.Width) / 2
	crop.Y = (h - crop.Height) / 2
	return crop, true
}

// CropBounds is the pixel rectangle of the centred crop inside bounds.
// Edges are truncated so the rectangle never leaves the source.
func CropBounds(bounds image.Rectangle, target float64) (image.Rectangle, bool) {
	crop, ok := CropRect(bounds.Dx(), bounds.Dy(), target)
	if !ok {
		return image.Rectangle{}, false
	}
	x, y := int(crop.X), int(crop.Y)
	w, h := int(crop.Width), int(crop.Height)
	if w == 0 || h == 0 {
		return image.Rectangle{}, false
	}
	r := image.Rect(x, y, x+w, y+h).Add(bounds.Min)
	return r.Intersect(bounds), true
}

// CopyRGBAtoBGRX is an inlined version of the hot pixel copying loop for
// the X11 ZPixmap format used by 24 bit visuals. dst must hold 4 bytes per
// source pixel.
func CopyRGBAtoBGRX(dst []byte, src *image.RGBA) {
	b := src.Rect
	o := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := src.PixOffset(b.Min.X, y)
		row := src.Pix[i : i+4*b.Dx() : i+4*b.Dx()]
		for j := 0; j < len(row); j += 4 {
			s := row[j : j+4 : j+4]
			d := dst[o : o+4 : o+4]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 0
			o += 4
		}
	}
}

// Calculated linear scaling of an rectangle from its original size to
// a max width and max height of a desired output.
// The whole picture is scaled inside the rectangle with blank space to
// right and bottom
func ScaleImageInside(bounds image.Rectangle, maxW, maxH int) image.Rectangle {
	imgW := bounds.Dx()
	imgH := bounds.Dy()
	if imgW == 0 || imgH == 0 {
		return image.Rectangle{}
	}
	ratio := float64(maxW) / float64(imgW)
	if r := float64(maxH) / float64(imgH); r < ratio {
		ratio = r
	}
	scaledW := int(ratio * float64(imgW))
	scaledH := int(ratio * float64(imgH))
	return image.Rect(0, 0, scaledW, scaledH)
}

// CentreIn moves r so it sits in the middle of outer.
func CentreIn(r, outer image.Rectangle) image.Rectangle {
	off := image.Pt((outer.Dx()-r.Dx())/2, (outer.Dy()-r.Dy())/2)
	return r.Sub(r.Min).Add(outer.Min).Add(off)
}

// Collage palette
var ColourNameToRGBA = map[string]color.NRGBA{
	"background": {R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	"title":      {R: 0x37, G: 0x41, B: 0x51, A: 0xFF},
	"timestamp":  {R: 0x6B, G: 0x72, B: 0x80, A: 0xFF},
	"border":     {R: 0xE5, G: 0xE7, B: 0xEB, A: 0xFF},
	"badge":      {R: 0x00, G: 0x00, B: 0x00, A: 0xB3}, // 70%
	"badgeText":  {R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	"overlay":    {R: 0x00, G: 0x00, B: 0x00, A: 0x80},
}
