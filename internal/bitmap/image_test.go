package bitmap

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func halfBlack(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			if x < width/2 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestFromImageBlackIsInk(t *testing.T) {
	packed, err := FromImage(halfBlack(16, 3), ImageOptions{MaxWidth: 384})
	if err != nil {
		t.Fatal(err)
	}
	if packed.Width() != 16 || packed.Height() != 3 {
		t.Fatalf("expected 16x3, got %v", packed)
	}
	expected := []byte{0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	if !bytes.Equal(packed.Data(), expected) {
		t.Errorf("expected %v, got %v", expected, packed.Data())
	}
}

func TestFromImageScalesDown(t *testing.T) {
	packed, err := FromImage(halfBlack(800, 100), ImageOptions{MaxWidth: 384})
	if err != nil {
		t.Fatal(err)
	}
	if packed.Width() != 384 || packed.Height() != 48 {
		t.Errorf("expected 384x48, got %v", packed)
	}
	if packed.GetBit(10, 10) != 1 || packed.GetBit(370, 10) != 0 {
		t.Errorf("expected left half black and right half white")
	}
}

func TestFromImageTransparentIsWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 1))
	packed, err := FromImage(img, ImageOptions{MaxWidth: 384})
	if err != nil {
		t.Fatal(err)
	}
	if packed.Data()[0] != 0 {
		t.Errorf("expected transparent pixels not to print, got %08b", packed.Data()[0])
	}
}

func TestFromImageEmpty(t *testing.T) {
	if _, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 0)), ImageOptions{}); err == nil {
		t.Errorf("expected an error for an empty image")
	}
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, halfBlack(8, 2)); err != nil {
		t.Fatal(err)
	}

	img, format, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || img.Bounds().Dx() != 8 {
		t.Errorf("expected an 8 pixel wide png, got %s %v", format, img.Bounds())
	}

	if _, _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Errorf("expected an error decoding garbage")
	}
}

func TestBanner(t *testing.T) {
	packed, err := Banner("HELLO", BannerOptions{Font: "gomono", Size: 48, Width: 384})
	if err != nil {
		t.Fatal(err)
	}
	if packed.Width() != 384 {
		t.Errorf("expected width 384, got %d", packed.Width())
	}
	if packed.Height() < 48 {
		t.Errorf("expected at least one 48 dot line, got height %d", packed.Height())
	}

	ink := 0
	for _, b := range packed.Data() {
		for ; b != 0; b &= b - 1 {
			ink++
		}
	}
	if ink == 0 {
		t.Errorf("expected some ink in the banner")
	}
}

func TestBannerWraps(t *testing.T) {
	one, err := Banner("WORD", BannerOptions{Size: 40, Width: 384})
	if err != nil {
		t.Fatal(err)
	}
	many, err := Banner("WORD WORD WORD WORD WORD WORD", BannerOptions{Size: 40, Width: 384})
	if err != nil {
		t.Fatal(err)
	}
	if many.Height() <= one.Height() {
		t.Errorf("expected wrapped text to be taller, got %d and %d", one.Height(), many.Height())
	}
}

func TestBannerErrors(t *testing.T) {
	tests := []BannerOptions{
		{Font: "comic sans", Size: 20, Width: 384},
		{Size: 0, Width: 384},
		{Size: 20, Width: 0},
	}
	for _, opts := range tests {
		if _, err := Banner("x", opts); err == nil {
			t.Errorf("expected an error for %+v", opts)
		}
	}
}
