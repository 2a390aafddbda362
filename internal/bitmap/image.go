package bitmap

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"
	"golang.org/x/image/draw"
)

// ImageOptions control how a full colour image is turned into a raster
type ImageOptions struct {
	// Images wider than this are scaled down to it, keeping the aspect ratio
	MaxWidth int
	// Gamma applied to the grey level before dithering. Values below 1
	// lighten the image, 0 or 1 leaves it alone.
	Gamma float64
}

// RenderForDevice scales, greys and dithers an image to black and white.
// Palette index 0 is black.
func RenderForDevice(i image.Image, opts ImageOptions) (*image.Paletted, error) {
	bounds := i.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("Image is empty (%dx%d)", bounds.Dx(), bounds.Dy())
	}

	src := i
	if opts.MaxWidth > 0 && bounds.Dx() > opts.MaxWidth {
		scaledBounds := image.Rect(0, 0, opts.MaxWidth, max(1, bounds.Dy()*opts.MaxWidth/bounds.Dx()))
		scaledImage := image.NewRGBA(scaledBounds)
		// white underneath so transparent areas don't print
		draw.Draw(scaledImage, scaledBounds, image.White, image.Point{}, draw.Src)
		draw.CatmullRom.Scale(scaledImage, scaledBounds, i, bounds, draw.Over, nil)
		src = scaledImage
	}

	srcBounds := src.Bounds()
	outBounds := image.Rect(0, 0, srcBounds.Dx(), srcBounds.Dy())
	monochromeImage := image.NewGray16(outBounds)
	for y := range outBounds.Dy() {
		for x := range outBounds.Dx() {
			grayColor := flatten(src.At(srcBounds.Min.X+x, srcBounds.Min.Y+y))
			if opts.Gamma > 0 && opts.Gamma != 1 {
				grayValue := math.Pow(float64(grayColor.Y)/float64(0xFFFF), opts.Gamma)
				grayColor = color.Gray16{Y: uint16(grayValue * float64(0xFFFF))}
			}
			monochromeImage.SetGray16(x, y, grayColor)
		}
	}

	palette := []color.Color{color.Black, color.White}
	ditherer := dither.NewDitherer(palette)
	ditherer.Matrix = dither.FloydSteinberg
	ditherer.Serpentine = true
	return ditherer.DitherPaletted(monochromeImage), nil
}

// flatten composites a colour over white and converts it to grey
func flatten(c color.Color) color.Gray16 {
	r, g, b, a := c.RGBA()
	white := 0xFFFF - a
	return color.Gray16Model.Convert(color.RGBA64{
		R: uint16(r + white),
		G: uint16(g + white),
		B: uint16(b + white),
		A: 0xFFFF,
	}).(color.Gray16)
}

// FromImage renders an image for the device and packs it ready to send
func FromImage(i image.Image, opts ImageOptions) (*PackedBitmap, error) {
	rendered, err := RenderForDevice(i, opts)
	if err != nil {
		return nil, err
	}
	b, err := FromPaletted(rendered)
	if err != nil {
		return nil, fmt.Errorf("Couldn't read dithered image:\n%w", err)
	}
	return Pack(b), nil
}
