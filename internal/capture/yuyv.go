package capture

import (
	"fmt"
	"image"
)

// YUYVToImage unpacks a packed YUYV 4:2:2 frame (Y0 U Y1 V per pixel pair)
// into planar YCbCr. stride is the bytes per row, 0 means width*2.
func YUYVToImage(buf []byte, width, height, stride int) (*image.YCbCr, error) {
	if width <= 0 || height <= 0 || width%2 != 0 {
		return nil, fmt.Errorf("yuyv: bad frame size %dx%d", width, height)
	}
	if stride == 0 {
		stride = width * 2
	}
	if stride < width*2 || len(buf) < stride*(height-1)+width*2 {
		return nil, fmt.Errorf("yuyv: %d bytes is short for %dx%d stride %d", len(buf), width, height, stride)
	}
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)
	for y := 0; y < height; y++ {
		row := buf[y*stride : y*stride+width*2]
		yo := y * img.YStride
		co := y * img.CStride
		for x := 0; x < width; x += 2 {
			p := row[x*2 : x*2+4 : x*2+4]
			img.Y[yo+x] = p[0]
			img.Y[yo+x+1] = p[2]
			img.Cb[co+x/2] = p[1]
			img.Cr[co+x/2] = p[3]
		}
	}
	return img, nil
}
