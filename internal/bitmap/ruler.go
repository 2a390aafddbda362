package bitmap

// Ruler draws a scale across the given width: a baseline along the bottom
// with a tick every 8 dots, longer ones every 64 and a full height one at
// each edge. Printing it shows whether the whole head is heating.
func Ruler(width, height int) (*PackedBitmap, error) {
	pixels := make([][]byte, height)
	for y := range pixels {
		pixels[y] = make([]byte, width)
	}
	for x := range width {
		var tick int
		switch {
		case x == 0 || x == width-1:
			tick = height
		case x%64 == 0:
			tick = height * 2 / 3
		case x%8 == 0:
			tick = height / 3
		}
		for y := height - tick; y < height; y++ {
			pixels[y][x] = 1
		}
	}
	if height > 0 {
		for x := range width {
			pixels[height-1][x] = 1
		}
	}

	b, err := NewPixelBitmap(pixels)
	if err != nil {
		return nil, err
	}
	return Pack(b), nil
}
