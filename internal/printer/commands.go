// This file implements the command byte sequences understood by the
// Adafruit/CSN-A2 family of TTL serial thermal printers. Opcodes and argument
// order must stay exactly as they are, the device rejects nothing and
// silently misprints on any deviation.
package printer

// Control characters
const (
	Esc = 0x1B
	GS  = 0x1D
	DC2 = 0x12
	FF  = 0x0C

	newline = '\n'
	xoff    = 0x13
)

// Initialises the printer, clearing the print buffer & formatting
func initPrinter() []byte {
	return []byte{Esc, 0x40}
}

// Begins the tab stop list; the columns follow as separate bursts
func setTabStops() []byte {
	return []byte{Esc, 0x44}
}

// Tab stops every 4 columns, 0 terminates the list
var defaultTabStops = [][]byte{
	{4, 8, 12, 16},
	{20, 24, 28, 0},
}

// ESC 7 n1 n2 n3: max heating dots (units of 8 dots), heating time (10us),
// heating interval (10us)
func setHeatConfig(dots, time, interval byte) []byte {
	return []byte{Esc, 0x37, dots, time, interval}
}

// DC2 # n: density in bits 0-4 (50% + 5% * n), break time in bits 5-7 (n * 250us)
func setPrintDensity(density, breakTime byte) []byte {
	return []byte{DC2, 0x23, breakTime<<5 | density}
}

func setPrintMode(mode PrintMode) []byte {
	return []byte{Esc, 0x21, byte(mode)}
}

func setSize(s Size) []byte {
	return []byte{GS, 0x21, byte(s)}
}

func setJustify(j Justify) []byte {
	return []byte{Esc, 0x61, byte(j)}
}

func setUnderline(u Underline) []byte {
	return []byte{Esc, 0x2D, byte(u)}
}

func setInverse(on bool) []byte {
	return []byte{GS, 0x42, boolByte(on)}
}

func setSideways(on bool) []byte {
	return []byte{Esc, 0x56, boolByte(on)}
}

func setOnline(on bool) []byte {
	return []byte{Esc, 0x3D, boolByte(on)}
}

// Line height in dots, including the character height
func setLineHeight(dots byte) []byte {
	return []byte{Esc, 0x33, dots}
}

func setCharset(c Charset) []byte {
	return []byte{Esc, 0x52, byte(c)}
}

func setCodePage(p Codepage) []byte {
	return []byte{Esc, 0x74, byte(p)}
}

func setBarcodeHeight(dots byte) []byte {
	return []byte{GS, 0x68, dots}
}

// Label printed below the barcode, module width 3, then the symbology.
// The barcode data follows in a firmware-dependent framing.
func barcodeHeader(code byte) []byte {
	return []byte{
		GS, 0x48, 2,
		GS, 0x77, 3,
		GS, 0x6B, code,
	}
}

func feedLines(n byte) []byte {
	return []byte{Esc, 0x64, n}
}

func feedRows(n byte) []byte {
	return []byte{Esc, 0x4A, n}
}

func flush() []byte {
	return []byte{FF}
}

func printTestPage() []byte {
	return []byte{DC2, 0x54}
}

// Prepares the printer for rows*rowBytes bytes of raster data
func bitmapHeader(rows, rowBytes byte) []byte {
	return []byte{DC2, 0x2A, rows, rowBytes}
}

// Sleep after the given number of idle seconds. Newer firmware takes a
// 16 bit little-endian value, older a single byte.
func sleepAfter(seconds uint16, word bool) []byte {
	if word {
		return []byte{Esc, 0x38, byte(seconds & 0xFF), byte(seconds >> 8)}
	}
	return []byte{Esc, 0x38, byte(seconds)}
}

func wakeByte() []byte {
	return []byte{0xFF}
}

// Sleep off on newer firmware, which is also the paper status query there
func sleepOff() []byte {
	return []byte{Esc, 0x76, 0}
}

func queryStatus(f Firmware) []byte {
	if f.has(capStatusQueryEscV) {
		return sleepOff()
	}
	return []byte{GS, 0x72, 0}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
