package printer

import (
	"fmt"
	"image"
	"time"

	"tomgalvin.uk/ttlprint/internal/bitmap"
)

// Extra dots fed below a barcode for its human readable label
const barcodeLabelDots = 40

// PrintBarcode prints text as a barcode of the given symbology, with the
// label below it. The symbology must exist in the firmware's code table.
func (p *Printer) PrintBarcode(text string, b Barcode) error {
	code, err := p.state.Firmware.barcodeCode(b)
	if err != nil {
		return err
	}
	p.logger.Debug("Printing barcode", "barcode", b.String(), "length", len(text))

	if p.state.Firmware.has(capBarcodeLeadingFeed) {
		// Newer firmware misprints the barcode without this
		if err := p.Feed(1); err != nil {
			return err
		}
	}

	if err := p.writeCommand(barcodeHeader(code)); err != nil {
		return err
	}
	p.gate.wait()
	p.gate.set(time.Duration(p.state.BarcodeHeight+barcodeLabelDots) * p.state.DotPrintTime)

	if err := p.send(barcodeData(encodeText(p.encoder, text), p.state.Firmware)); err != nil {
		return err
	}
	p.state.endLine()
	return nil
}

// barcodeData frames the content the way the firmware expects it: a length
// byte in front on newer firmware, a NUL terminator on older.
func barcodeData(data []byte, f Firmware) []byte {
	if f.has(capBarcodeLengthPrefix) {
		n := min(len(data), 255)
		out := make([]byte, 0, n+1)
		out = append(out, byte(n))
		return append(out, data[:n]...)
	}
	out := make([]byte, 0, len(data)+1)
	out = append(out, data...)
	return append(out, 0)
}

// PrintBitmap prints a packed 1 bit per pixel raster, most significant bit
// leftmost and each row padded to a whole byte. Set bits are printed black.
// Anything past the width of the print head is left off. Sending one row at
// a time is slower but works around some units dropping data in large
// transfers.
func (p *Printer) PrintBitmap(width, height int, data []byte, lineAtATime bool) error {
	if width <= 0 {
		return invalid("bitmap width", width, "positive")
	}
	if height < 0 {
		return invalid("bitmap height", height, "zero or more")
	}
	need := (width + 7) / 8 * height
	if len(data) < need {
		return invalid("bitmap data", fmt.Sprintf("%d bytes", len(data)), fmt.Sprintf("at least %d bytes for %dx%d", need, width, height))
	}
	packed, err := bitmap.NewPackedBitmap(width, height, data[:need])
	if err != nil {
		return invalid("bitmap data", fmt.Sprintf("%d bytes", len(data)), err.Error())
	}
	return p.PrintPacked(packed, lineAtATime)
}

// PrintPacked is PrintBitmap for a raster that is already a PackedBitmap
func (p *Printer) PrintPacked(b *bitmap.PackedBitmap, lineAtATime bool) error {
	p.logger.Debug("Printing bitmap", "width", b.Width(), "height", b.Height(), "lineAtATime", lineAtATime)

	chunker := newBitmapChunker(b, lineAtATime)
	for {
		chunk, ok := chunker.next()
		if !ok {
			break
		}
		if err := p.writeCommand(chunk.header); err != nil {
			return err
		}
		// Raster data streams without per-byte pacing, the device buffers a
		// whole chunk.
		if err := p.send(chunk.body); err != nil {
			return fmt.Errorf("Couldn't send bitmap chunk:\n%w", err)
		}
		p.gate.set(time.Duration(chunk.rows) * p.state.DotPrintTime)
	}
	p.state.endLine()
	return nil
}

// PrintImage scales and dithers an image to fit the print head and prints it
func (p *Printer) PrintImage(img image.Image, lineAtATime bool) error {
	packed, err := bitmap.FromImage(img, bitmap.ImageOptions{MaxWidth: MaxWidth})
	if err != nil {
		return fmt.Errorf("Couldn't convert image for printing:\n%w", err)
	}
	return p.PrintPacked(packed, lineAtATime)
}
