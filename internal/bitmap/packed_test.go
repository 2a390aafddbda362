package bitmap

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"testing"
)

// randomBitmap is up to twice the print width so packing is also checked on
// rows that get clipped later
func randomBitmap() *PixelBitmap {
	w, h := 1+rand.IntN(2*384), 1+rand.IntN(300)
	rows := make([][]byte, h)
	for y := range rows {
		rows[y] = make([]byte, w)
		for x := range rows[y] {
			if rand.IntN(3) == 0 {
				rows[y][x] = 1
			}
		}
	}
	b, _ := NewPixelBitmap(rows)
	return b
}

func assertSameBits(t *testing.T, want Bitmap, got Bitmap) {
	t.Helper()
	if want.Width() != got.Width() || want.Height() != got.Height() {
		t.Fatalf("expected %dx%d, got %dx%d", want.Width(), want.Height(), got.Width(), got.Height())
	}
	for y := range want.Height() {
		for x := range want.Width() {
			if w, g := want.GetBit(x, y), got.GetBit(x, y); w != g {
				t.Fatalf("expected bit %d at (%d, %d), got %d", w, x, y, g)
			}
		}
	}
}

func TestPackBitmap(t *testing.T) {
	checkerboard, err := NewPixelBitmap([][]byte{
		{1, 0, 1},
		{0, 1, 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	assertSameBits(t, checkerboard, Pack(checkerboard))
}

func TestPackBitmapMany(t *testing.T) {
	for i := range 30 {
		src := randomBitmap()
		t.Run(fmt.Sprintf("%d/%dx%d", i, src.Width(), src.Height()), func(t *testing.T) {
			packed := Pack(src)
			assertSameBits(t, src, packed)
			assertSameBits(t, packed, Pack(packed))
		})
	}
}

// The leftmost pixel is the top bit, and a partial last byte is padded on
// the right, which is how the print head reads it.
func TestPackLayout(t *testing.T) {
	b, err := NewPixelBitmap([][]byte{
		{1, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0},
		{0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	packed := Pack(b)
	if packed.Stride() != 2 {
		t.Errorf("expected stride 2, got %d", packed.Stride())
	}
	expected := []byte{0x81, 0xC0, 0x40, 0x20}
	if !bytes.Equal(packed.Data(), expected) {
		t.Errorf("expected %08b, got %08b", expected, packed.Data())
	}
}

func TestPackedRows(t *testing.T) {
	b := randomBitmap()
	packed := Pack(b)
	if packed.Height() < 2 {
		return
	}

	start := packed.Height() / 2
	band := packed.Rows(start, packed.Height()-start)
	for y := range band.Height() {
		for x := range band.Width() {
			if band.GetBit(x, y) != b.GetBit(x, start+y) {
				t.Fatalf("Bit at (%v, %v) of band doesn't match row %v", x, y, start+y)
			}
		}
	}
}

func TestNewPackedBitmap(t *testing.T) {
	if _, err := NewPackedBitmap(9, 2, make([]byte, 4)); err != nil {
		t.Errorf("expected 9x2 to take 4 bytes, got %v", err)
	}
	if _, err := NewPackedBitmap(9, 2, make([]byte, 3)); err == nil {
		t.Errorf("expected an error for short data")
	}
}

func TestNewPixelBitmapRagged(t *testing.T) {
	if _, err := NewPixelBitmap([][]byte{{1, 0}, {1}}); err == nil {
		t.Errorf("expected an error for rows of different lengths")
	}
}
