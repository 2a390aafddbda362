package printer

import "fmt"

// SetPrintMode turns on the given mode bits, leaving the others as they are
func (p *Printer) SetPrintMode(mask PrintMode) error {
	if mask&^allPrintModes != 0 {
		return invalid("print mode", fmt.Sprintf("%#x", byte(mask)), "a combination of the known mode bits")
	}
	return p.writePrintMode(p.state.PrintMode | mask)
}

// UnsetPrintMode turns off the given mode bits, leaving the others as they are
func (p *Printer) UnsetPrintMode(mask PrintMode) error {
	if mask&^allPrintModes != 0 {
		return invalid("print mode", fmt.Sprintf("%#x", byte(mask)), "a combination of the known mode bits")
	}
	return p.writePrintMode(p.state.PrintMode &^ mask)
}

// The device only takes the whole mode byte, never single bits
func (p *Printer) writePrintMode(m PrintMode) error {
	p.logger.Debug("Setting print mode", "mode", m.String())
	p.state.applyPrintMode(m)
	return p.writeCommand(setPrintMode(m))
}

func (p *Printer) toggleMode(m PrintMode, on bool) error {
	if on {
		return p.SetPrintMode(m)
	}
	return p.UnsetPrintMode(m)
}

func (p *Printer) Bold(on bool) error          { return p.toggleMode(BoldMode, on) }
func (p *Printer) UpsideDown(on bool) error    { return p.toggleMode(UpsideDownMode, on) }
func (p *Printer) DoubleHeight(on bool) error  { return p.toggleMode(DoubleHeightMode, on) }
func (p *Printer) DoubleWidth(on bool) error   { return p.toggleMode(DoubleWidthMode, on) }
func (p *Printer) Strikethrough(on bool) error { return p.toggleMode(StrikeMode, on) }

// SmallFont switches to the 9x17 font, 42 columns across
func (p *Printer) SmallFont(on bool) error { return p.toggleMode(SmallFontMode, on) }

// Inverse prints white on black
func (p *Printer) Inverse(on bool) error {
	return p.writeCommand(setInverse(on))
}

// RotateSideways prints characters rotated 90 degrees, text passed to Print
// is reversed to match.
func (p *Printer) RotateSideways(on bool) error {
	if err := p.writeCommand(setSideways(on)); err != nil {
		return err
	}
	p.state.Sideways = on
	return nil
}

// SetSize overrides the height and column count implied by the print mode
func (p *Printer) SetSize(s Size) error {
	if s != Small && s != Medium && s != Large {
		return invalid("size", fmt.Sprintf("%#x", byte(s)), "S, M or L")
	}
	p.logger.Debug("Setting size", "size", s.String())
	if err := p.writeCommand(setSize(s)); err != nil {
		return err
	}
	p.state.applySize(s)
	return nil
}

func (p *Printer) Justify(j Justify) error {
	if j > Right {
		return invalid("justify", byte(j), "L, C or R")
	}
	return p.writeCommand(setJustify(j))
}

func (p *Printer) Underline(u Underline) error {
	if u > ThickUnderline {
		return invalid("underline", byte(u), "0, 1 or 2")
	}
	return p.writeCommand(setUnderline(u))
}

// SetLineHeight sets the line pitch in dots. Values below the character
// height are raised to it, values above 255 lowered to 255.
func (p *Printer) SetLineHeight(dots int) error {
	dots = min(max(dots, minLineHeight), 255)
	if err := p.writeCommand(setLineHeight(byte(dots))); err != nil {
		return err
	}
	p.state.LineSpacing = dots - minLineHeight
	return nil
}

func (p *Printer) SetBarcodeHeight(dots int) error {
	if dots < 1 || dots > 255 {
		return invalid("barcode height", dots, "1-255 dots")
	}
	if err := p.writeCommand(setBarcodeHeight(byte(dots))); err != nil {
		return err
	}
	p.state.BarcodeHeight = dots
	return nil
}

// SetCharset picks the national variant of the ASCII range
func (p *Printer) SetCharset(c Charset) error {
	if !c.valid() {
		return invalid("charset", byte(c), "0-15")
	}
	return p.writeCommand(setCharset(c))
}

// SetCodePage picks the upper half of the character table. Text is encoded
// for the new code page from then on.
func (p *Printer) SetCodePage(cp Codepage) error {
	if !cp.valid() {
		return invalid("code page", byte(cp), "0-10 or 15-47")
	}
	if err := p.writeCommand(setCodePage(cp)); err != nil {
		return err
	}
	p.encoder = charmapFor(cp)
	return nil
}
