package bitmap

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// BannerOptions describe how to draw text that's too big or too fancy for
// the printer's own fonts
type BannerOptions struct {
	// One of the built in fonts: "gomono", "goregular" or "gobold"
	Font string
	// Size in dots
	Size int
	// Lines are wrapped to fit this many dots across
	Width int
}

func getFontData(name string) ([]byte, error) {
	switch name {
	case "", "gomono":
		return gomono.TTF, nil
	case "goregular":
		return goregular.TTF, nil
	case "gobold":
		return gobold.TTF, nil
	default:
		return nil, fmt.Errorf(`Unrecognised built in font "%s"`, name)
	}
}

func loadFont(name string, size int) (font.Face, error) {
	fontData, err := getFontData(name)
	if err != nil {
		return nil, fmt.Errorf("Couldn't get font data:\n%w", err)
	}

	parsedFont, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("Couldn't parse font %s:\n%w", name, err)
	}

	// 72 DPI makes the size come out in dots
	fontFace, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("Couldn't create font face:\n%w", err)
	}
	return fontFace, nil
}

// wrapText breaks text into lines no wider than maxWidth when drawn with
// face. A single word wider than that gets a line to itself.
func wrapText(text string, maxWidth int, face font.Face) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var line string
		for _, word := range words {
			testLine := line
			if len(line) > 0 {
				testLine += " "
			}
			testLine += word

			width := font.MeasureString(face, testLine).Ceil()
			if width > maxWidth && len(line) > 0 {
				lines = append(lines, line)
				line = word
			} else {
				line = testLine
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// Banner draws text black on white at the given width and packs it
func Banner(text string, opts BannerOptions) (*PackedBitmap, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("Banner font size must be positive, got %d", opts.Size)
	}
	if opts.Width <= 0 {
		return nil, fmt.Errorf("Banner width must be positive, got %d", opts.Width)
	}

	face, err := loadFont(opts.Font, opts.Size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	lines := wrapText(text, opts.Width, face)
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	height := max(1, lineHeight*len(lines))

	img := image.NewGray(image.Rect(0, 0, opts.Width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.Point26_6{
			X: 0,
			Y: fixed.I(i*lineHeight) + metrics.Ascent,
		}
		d.DrawString(line)
	}

	return Pack(&thresholdBitmap{img}), nil
}

// thresholdBitmap treats anything darker than mid grey as ink. Antialiased
// glyph edges come out cleaner this way than dithered.
type thresholdBitmap struct {
	img *image.Gray
}

func (b *thresholdBitmap) Width() int  { return b.img.Rect.Dx() }
func (b *thresholdBitmap) Height() int { return b.img.Rect.Dy() }

func (b *thresholdBitmap) GetBit(x int, y int) byte {
	if b.img.GrayAt(x, y).Y < 0x80 {
		return 1
	}
	return 0
}
