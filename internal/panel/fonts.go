package panel

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
	fontsErr    error
)

func loadFonts() {
	regularFont, fontsErr = truetype.Parse(goregular.TTF)
	if fontsErr != nil {
		fontsErr = fmt.Errorf("parse go regular: %w", fontsErr)
		return
	}
	boldFont, fontsErr = truetype.Parse(gobold.TTF)
	if fontsErr != nil {
		fontsErr = fmt.Errorf("parse go bold: %w", fontsErr)
	}
}

// Face returns a new Go font face, size is in pixels.
// A face keeps a glyph cache so each renderer gets its own.
func Face(bold bool, size float64) (font.Face, error) {
	fontsOnce.Do(loadFonts)
	if fontsErr != nil {
		return nil, fontsErr
	}
	ttf := regularFont
	if bold {
		ttf = boldFont
	}
	// at 72 DPI a point is a pixel
	return truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}
