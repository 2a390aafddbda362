package printer

import "tomgalvin.uk/ttlprint/internal/bitmap"

const (
	// 384 dots across the print head
	MaxRowBytes = 48
	MaxWidth    = MaxRowBytes * 8

	// The row count in a bitmap header is a single byte
	maxChunkRows = 255
)

// bitmapChunk is one DC2 * transfer: a header and rows*rowBytes of raster
type bitmapChunk struct {
	header []byte
	body   []byte
	rows   int
}

// bitmapChunker splits a packed raster into transfers the device accepts.
// Rows wider than the print head are clipped: only the first MaxRowBytes of
// each source row are sent, the rest are skipped over.
type bitmapChunker struct {
	b       *bitmap.PackedBitmap
	clipped int
	maxRows int
	nextRow int
}

func newBitmapChunker(b *bitmap.PackedBitmap, lineAtATime bool) *bitmapChunker {
	c := &bitmapChunker{
		b:       b,
		clipped: clippedRowBytes(b.Width()),
		maxRows: maxChunkRows,
	}
	if lineAtATime {
		c.maxRows = 1
	}
	return c
}

// clippedRowBytes is the number of bytes per row actually sent for a bitmap
// of the given width
func clippedRowBytes(width int) int {
	return min((width+7)/8, MaxRowBytes)
}

// next returns the following chunk, or false once every row has been taken
func (c *bitmapChunker) next() (bitmapChunk, bool) {
	if c.nextRow >= c.b.Height() {
		return bitmapChunk{}, false
	}
	rows := min(c.b.Height()-c.nextRow, c.maxRows)
	band := c.b.Rows(c.nextRow, rows)
	c.nextRow += rows

	body := make([]byte, 0, rows*c.clipped)
	data, stride := band.Data(), band.Stride()
	for y := range rows {
		body = append(body, data[y*stride:y*stride+c.clipped]...)
	}

	return bitmapChunk{
		header: bitmapHeader(byte(rows), byte(c.clipped)),
		body:   body,
		rows:   rows,
	}, true
}
