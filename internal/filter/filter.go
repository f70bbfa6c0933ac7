// Package filter holds the colour filters a photo can be taken with.
package filter

import (
	"image"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/gift"
)

type Kind int

const (
	None Kind = iota
	Warm
	Cool
	Vintage
	BlackWhite
)

var names = map[Kind]string{
	None:       "none",
	Warm:       "warm",
	Cool:       "cool",
	Vintage:    "vintage",
	BlackWhite: "bw",
}

var labels = map[Kind]string{
	None:       "Original",
	Warm:       "Warm",
	Cool:       "Cool",
	Vintage:    "Vintage",
	BlackWhite: "B&W",
}

// All lists the filters in menu order.
func All() []Kind {
	return []Kind{None, Warm, Cool, Vintage, BlackWhite}
}

// Parse maps a filter name onto a Kind. Unknown names give None.
func Parse(name string) Kind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "warm":
		return Warm
	case "cool":
		return Cool
	case "vintage":
		return Vintage
	case "bw", "b&w", "blackwhite", "black-white", "mono":
		return BlackWhite
	default:
		return None
	}
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return names[None]
}

func (k Kind) Label() string {
	if l, ok := labels[k]; ok {
		return l
	}
	return labels[None]
}

// Next cycles through the filters in menu order.
func (k Kind) Next() Kind {
	all := All()
	for i, f := range all {
		if f == k {
			return all[(i+1)%len(all)]
		}
	}
	return None
}

// Apply transforms img in place, one pixel at a time. Alpha is untouched.
//
// Channel values are clamped to [0,255] and rounded half to even, which is
// how a canvas byte array stores a float.
func Apply(k Kind, img *image.RGBA) {
	if img == nil {
		return
	}
	px := pixelFunc(k)
	if px == nil {
		return
	}
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		row := img.Pix[i : i+4*b.Dx() : i+4*b.Dx()]
		for j := 0; j < len(row); j += 4 {
			s := row[j : j+3 : j+3]
			s[0], s[1], s[2] = px(float64(s[0]), float64(s[1]), float64(s[2]))
		}
	}
}

type pixel func(r, g, b float64) (uint8, uint8, uint8)

func pixelFunc(k Kind) pixel {
	switch k {
	case Warm:
		return func(r, g, b float64) (uint8, uint8, uint8) {
			return clamp(r * 1.2), clamp(g * 1.1), clamp(b)
		}
	case Cool:
		return func(r, g, b float64) (uint8, uint8, uint8) {
			return clamp(r), clamp(g), clamp(b * 1.2)
		}
	case Vintage:
		return func(r, g, b float64) (uint8, uint8, uint8) {
			avg := (r + g + b) / 3
			return clamp(avg + 40), clamp(avg + 20), clamp(avg - 20)
		}
	case BlackWhite:
		return func(r, g, b float64) (uint8, uint8, uint8) {
			v := clamp(r*0.299 + g*0.587 + b*0.114)
			return v, v, v
		}
	}
	return nil
}

func clamp(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.RoundToEven(v))
}

// Bounds lets a Kind stand in a gift pipeline; filters never resize.
func (k Kind) Bounds(srcBounds image.Rectangle) image.Rectangle {
	return image.Rect(0, 0, srcBounds.Dx(), srcBounds.Dy())
}

// Draw implements gift.Filter.
func (k Kind) Draw(dst draw.Image, src image.Image, options *gift.Options) {
	sb := src.Bounds()
	tmp := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(tmp, tmp.Rect, src, sb.Min, draw.Src)
	Apply(k, tmp)
	draw.Draw(dst, dst.Bounds(), tmp, image.Point{}, draw.Src)
}

var _ gift.Filter = Kind(0)
