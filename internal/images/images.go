package images

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	cellWidth  = 6
	cellHeight = 12
	margin     = 4
)

var (
	BacklightOnColor  = color.RGBA{0x7a, 0xc1, 0x42, 0xff}
	BacklightOffColor = color.RGBA{0x2e, 0x3b, 0x24, 0xff}
	PixelColor        = color.RGBA{0x10, 0x18, 0x10, 0xff}
)

// LcdImage draws the character lines of an LCD, one bitmap font cell per
// character.
func LcdImage(lines []string, backlight bool) *image.RGBA {
	cols := 0
	for _, line := range lines {
		if len(line) > cols {
			cols = len(line)
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, 2*margin+cols*cellWidth, 2*margin+len(lines)*cellHeight))

	background := BacklightOffColor
	if backlight {
		background = BacklightOnColor
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(PixelColor),
		Face: bitmapfont.Face,
	}
	ascent := d.Face.Metrics().Ascent.Ceil()
	for row, line := range lines {
		for col := 0; col < len(line); col++ {
			d.Dot = fixed.P(margin+col*cellWidth, margin+row*cellHeight+ascent)
			d.DrawString(string(line[col]))
		}
	}
	return img
}
