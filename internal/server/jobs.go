package server

import (
	"errors"
	"fmt"
	"image"

	"tomgalvin.uk/ttlprint/internal/bitmap"
	"tomgalvin.uk/ttlprint/internal/model"
	"tomgalvin.uk/ttlprint/internal/printer"
)

const defaultBannerSize = 48

// PrintText applies the request's formatting, prints the text and puts the
// formatting back to the defaults, even when printing fails part way
func PrintText(p *printer.Printer, r model.TextRequest) (err error) {
	steps, err := textSteps(p, r)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, p.SetDefault())
		}
	}()
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// textSteps checks every argument before anything is sent, so a bad request
// leaves the printer untouched
func textSteps(p *printer.Printer, r model.TextRequest) ([]func() error, error) {
	var steps []func() error

	if r.Size != "" {
		size, err := printer.ParseSize(r.Size)
		if err != nil {
			return nil, err
		}
		steps = append(steps, func() error { return p.SetSize(size) })
	}
	if r.Justify != "" {
		j, err := printer.ParseJustify(r.Justify)
		if err != nil {
			return nil, err
		}
		steps = append(steps, func() error { return p.Justify(j) })
	}
	if r.Underline != 0 {
		if r.Underline < 0 || r.Underline > 2 {
			return nil, &printer.ArgumentError{Op: "underline", Value: r.Underline, Want: "0, 1 or 2"}
		}
		steps = append(steps, func() error { return p.Underline(printer.Underline(r.Underline)) })
	}
	if err := CheckFeed(r.Feed); err != nil {
		return nil, err
	}

	var mode printer.PrintMode
	for _, m := range []struct {
		on   bool
		mode printer.PrintMode
	}{
		{r.Bold, printer.BoldMode},
		{r.UpsideDown, printer.UpsideDownMode},
		{r.DoubleHeight, printer.DoubleHeightMode},
		{r.DoubleWidth, printer.DoubleWidthMode},
		{r.Strike, printer.StrikeMode},
		{r.SmallFont, printer.SmallFontMode},
	} {
		if m.on {
			mode |= m.mode
		}
	}
	if mode != 0 {
		steps = append(steps, func() error { return p.SetPrintMode(mode) })
	}
	if r.Inverse {
		steps = append(steps, func() error { return p.Inverse(true) })
	}
	if r.Sideways {
		steps = append(steps, func() error { return p.RotateSideways(true) })
	}

	steps = append(steps, func() error {
		if r.Wrap {
			return p.PrintlnWrapped(r.Text)
		}
		return p.Println(r.Text)
	})
	if r.Feed > 0 {
		steps = append(steps, func() error { return p.Feed(r.Feed) })
	}
	steps = append(steps, p.SetDefault)
	return steps, nil
}

// CheckFeed rejects a trailing feed the device can't take in one command
func CheckFeed(lines int) error {
	if lines < 0 || lines > 255 {
		return &printer.ArgumentError{Op: "feed", Value: lines, Want: "0-255 lines"}
	}
	return nil
}

// CheckBarcode validates everything in the request that doesn't depend on
// the printer's firmware
func CheckBarcode(r model.BarcodeRequest) (printer.Barcode, error) {
	b, err := printer.ParseBarcode(r.Type)
	if err != nil {
		return 0, err
	}
	if r.Height < 0 || r.Height > 255 {
		return 0, &printer.ArgumentError{Op: "barcode height", Value: r.Height, Want: "1-255 dots"}
	}
	return b, CheckFeed(r.Feed)
}

// PrintBarcode prints at the requested height and then goes back to the
// default height for whoever prints next
func PrintBarcode(p *printer.Printer, r model.BarcodeRequest) (err error) {
	b, err := CheckBarcode(r)
	if err != nil {
		return err
	}
	if r.Height != 0 {
		if err := p.SetBarcodeHeight(r.Height); err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, p.SetBarcodeHeight(printer.DefaultBarcodeHeight))
		}()
	}
	if err := p.PrintBarcode(r.Data, b); err != nil {
		return err
	}
	if r.Feed > 0 {
		return p.Feed(r.Feed)
	}
	return nil
}

// RenderBanner draws the banner before the printer is locked, it's the slow
// part
func RenderBanner(r model.BannerRequest) (*bitmap.PackedBitmap, error) {
	size := r.Size
	if size == 0 {
		size = defaultBannerSize
	}
	b, err := bitmap.Banner(r.Text, bitmap.BannerOptions{Font: r.Font, Size: size, Width: printer.MaxWidth})
	if err != nil {
		return nil, &printer.ArgumentError{Op: "banner", Value: r.Font, Want: fmt.Sprintf("a renderable font and size (%v)", err)}
	}
	return b, nil
}

func PrintPacked(p *printer.Printer, b *bitmap.PackedBitmap, feed int) error {
	if err := CheckFeed(feed); err != nil {
		return err
	}
	if err := p.PrintPacked(b, false); err != nil {
		return err
	}
	if feed > 0 {
		return p.Feed(feed)
	}
	return nil
}

func RenderImage(img image.Image) (*bitmap.PackedBitmap, error) {
	return bitmap.FromImage(img, bitmap.ImageOptions{MaxWidth: printer.MaxWidth})
}
