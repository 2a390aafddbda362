package bitmap

import "fmt"

// PackedBitmap is a raster in the layout the printer reads off the wire
type PackedBitmap struct {
	data                  []byte
	width, height, stride int
}

const bitsPerWord = 8

// NewPackedBitmap wraps data already in the packed layout
func NewPackedBitmap(width, height int, data []byte) (*PackedBitmap, error) {
	stride := (width + bitsPerWord - 1) / bitsPerWord
	if width < 0 || height < 0 || len(data) != stride*height {
		return nil, fmt.Errorf("Packed data not consistent with size (got %v bytes, expecting %v*%v=%v)",
			len(data), stride, height, stride*height)
	}
	return &PackedBitmap{data, width, height, stride}, nil
}

func (b *PackedBitmap) Width() int {
	return b.width
}

func (b *PackedBitmap) Height() int {
	return b.height
}

// Stride is the number of bytes per row
func (b *PackedBitmap) Stride() int {
	return b.stride
}

func (b *PackedBitmap) Data() []byte {
	return b.data
}

// GetBit returns 0 or 1 for the pixel at (x, y)
func (b *PackedBitmap) GetBit(x int, y int) byte {
	index := (y * b.stride) + (x / bitsPerWord)
	return (b.data[index] >> (bitsPerWord - 1 - x%bitsPerWord)) & 1
}

func (b *PackedBitmap) String() string {
	return fmt.Sprintf("PackedBitmap(%d,%d)", b.width, b.height)
}

// Rows takes a horizontal band of the bitmap starting at row start. The band
// shares memory with b.
func (b *PackedBitmap) Rows(start int, height int) *PackedBitmap {
	return &PackedBitmap{
		data:   b.data[b.stride*start : b.stride*(start+height)],
		width:  b.width,
		height: height,
		stride: b.stride,
	}
}

// Pack copies any Bitmap into the packed layout. When the width isn't a
// multiple of 8 the last byte of each row is padded with zero bits on the
// right.
func Pack(b Bitmap) *PackedBitmap {
	width, height, stride := b.Width(), b.Height(), (b.Width()+bitsPerWord-1)/bitsPerWord
	data := make([]byte, stride*height)

	for y := range height {
		var p byte
		for x := range width {
			p = (p << 1) | (b.GetBit(x, y) & 1)

			if x == width-1 || x%bitsPerWord == bitsPerWord-1 {
				// left align a partial final byte
				p <<= bitsPerWord - 1 - x%bitsPerWord
				data[y*stride+x/bitsPerWord] = p
				p = 0
			}
		}
	}

	return &PackedBitmap{data, width, height, stride}
}
