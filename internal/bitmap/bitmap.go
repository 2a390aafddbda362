// Package bitmap converts images and text into the 1 bit rasters a thermal
// print head takes. A set bit is a heated dot, which prints black.
//
// Bitmap is the common read interface. PixelBitmap stores one byte per pixel
// and is mostly useful for building rasters by hand and in tests. PackedBitmap
// is the wire format: rows of bytes, leftmost pixel in the most significant
// bit, each row padded out to a whole byte.
package bitmap

import (
	"fmt"
	"image"
	"image/color"
)

type Bitmap interface {
	Width() int
	Height() int
	GetBit(x int, y int) byte
}

type PixelBitmap struct {
	pixels        [][]byte
	width, height int
}

// NewPixelBitmap wraps rows of pixels, each 0 or 1. Every row must be the
// same length.
func NewPixelBitmap(pixels [][]byte) (*PixelBitmap, error) {
	height := len(pixels)
	width := 0
	if height > 0 {
		width = len(pixels[0])
	}
	for y, row := range pixels {
		if len(row) != width {
			return nil, fmt.Errorf("Row %d has %d pixels, expected %d", y, len(row), width)
		}
	}
	return &PixelBitmap{pixels, width, height}, nil
}

func (b *PixelBitmap) Width() int {
	return b.width
}

func (b *PixelBitmap) Height() int {
	return b.height
}

func (b *PixelBitmap) GetBit(x int, y int) byte {
	return b.pixels[y][x]
}

func (b *PixelBitmap) String() string {
	return fmt.Sprintf("PixelBitmap(%d,%d)", b.width, b.height)
}

// PalettedBitmap reads bits straight out of a two colour image
type PalettedBitmap struct {
	image *image.Paletted
	// colorMap[i] is the bit for palette index i, 1 for whichever colour is
	// closer to black
	colorMap [2]byte
}

func (b *PalettedBitmap) Width() int {
	return b.image.Rect.Dx()
}

func (b *PalettedBitmap) Height() int {
	return b.image.Rect.Dy()
}

func (b *PalettedBitmap) GetBit(x int, y int) byte {
	min := b.image.Rect.Min
	return b.colorMap[b.image.ColorIndexAt(min.X+x, min.Y+y)]
}

func FromPaletted(i *image.Paletted) (*PalettedBitmap, error) {
	if len(i.Palette) != 2 {
		return nil, fmt.Errorf("Image must have 2 colours in its palette, got %d", len(i.Palette))
	}

	var colorMap [2]byte
	if i.Palette.Index(color.White) == 0 {
		colorMap = [2]byte{0, 1}
	} else {
		colorMap = [2]byte{1, 0}
	}

	return &PalettedBitmap{
		image:    i,
		colorMap: colorMap,
	}, nil
}
