package printer

import (
	"fmt"
	"strings"
)

// Type alias for the text alignment, values are as sent on the wire
type Justify byte

const (
	Left   Justify = 0x00
	Centre Justify = 0x01
	Right  Justify = 0x02
)

func (j Justify) String() string {
	switch j {
	case Left:
		return "L"
	case Centre:
		return "C"
	case Right:
		return "R"
	}
	return fmt.Sprintf("Justify(%d)", byte(j))
}

// ParseJustify accepts "L", "C" or "R" in either case.
func ParseJustify(s string) (Justify, error) {
	switch strings.ToUpper(s) {
	case "L":
		return Left, nil
	case "C":
		return Centre, nil
	case "R":
		return Right, nil
	}
	return 0, invalid("justify", s, "L, C or R")
}

// Character size, values are the GS ! argument
type Size byte

const (
	Small  Size = 0x00
	Medium Size = 0x01
	Large  Size = 0x11
)

func (s Size) String() string {
	switch s {
	case Small:
		return "S"
	case Medium:
		return "M"
	case Large:
		return "L"
	}
	return fmt.Sprintf("Size(%#x)", byte(s))
}

// ParseSize accepts "S", "M" or "L" in either case.
func ParseSize(s string) (Size, error) {
	switch strings.ToUpper(s) {
	case "S":
		return Small, nil
	case "M":
		return Medium, nil
	case "L":
		return Large, nil
	}
	return 0, invalid("size", s, "S, M or L")
}

type Underline byte

const (
	NoUnderline    Underline = 0
	ThinUnderline  Underline = 1
	ThickUnderline Underline = 2
)

// PrintMode is the bit set sent with ESC !
type PrintMode byte

const (
	SmallFontMode    PrintMode = 1 << 1
	UpsideDownMode   PrintMode = 1 << 2
	BoldMode         PrintMode = 1 << 3
	DoubleHeightMode PrintMode = 1 << 4
	DoubleWidthMode  PrintMode = 1 << 5
	StrikeMode       PrintMode = 1 << 6

	allPrintModes = SmallFontMode | UpsideDownMode | BoldMode | DoubleHeightMode | DoubleWidthMode | StrikeMode
)

var printModeNames = []struct {
	mode PrintMode
	name string
}{
	{SmallFontMode, "small-font"},
	{UpsideDownMode, "upside-down"},
	{BoldMode, "bold"},
	{DoubleHeightMode, "double-height"},
	{DoubleWidthMode, "double-width"},
	{StrikeMode, "strike"},
}

func (m PrintMode) String() string {
	if m == 0 {
		return "none"
	}
	var names []string
	for _, n := range printModeNames {
		if m&n.mode != 0 {
			names = append(names, n.name)
		}
	}
	if rest := m &^ allPrintModes; rest != 0 {
		names = append(names, fmt.Sprintf("%#x", byte(rest)))
	}
	return strings.Join(names, "|")
}

// Barcode symbologies. These are host-side identifiers, the byte sent to the
// device comes from the code table of the firmware generation in use.
type Barcode int

const (
	UPCA Barcode = iota
	UPCE
	EAN13
	EAN8
	Code39
	I25
	Codebar
	Code93
	Code128
	Code11
	MSI
	ITF
	Codabar
)

var barcodeNames = [...]string{
	UPCA:    "UPC_A",
	UPCE:    "UPC_E",
	EAN13:   "EAN13",
	EAN8:    "EAN8",
	Code39:  "CODE39",
	I25:     "I25",
	Codebar: "CODEBAR",
	Code93:  "CODE93",
	Code128: "CODE128",
	Code11:  "CODE11",
	MSI:     "MSI",
	ITF:     "ITF",
	Codabar: "CODABAR",
}

func (b Barcode) String() string {
	if b >= 0 && int(b) < len(barcodeNames) {
		return barcodeNames[b]
	}
	return fmt.Sprintf("Barcode(%d)", int(b))
}

// ParseBarcode looks a symbology up by the name String returns
func ParseBarcode(s string) (Barcode, error) {
	for i, n := range barcodeNames {
		if strings.EqualFold(n, s) {
			return Barcode(i), nil
		}
	}
	return 0, invalid("barcode", s, "a known symbology")
}

// International character set, selects variants of some chars in 0x23-0x7E
type Charset byte

const (
	CharsetUSA Charset = iota
	CharsetFrance
	CharsetGermany
	CharsetUK
	CharsetDenmark1
	CharsetSweden
	CharsetItaly
	CharsetSpain1
	CharsetJapan
	CharsetNorway
	CharsetDenmark2
	CharsetSpain2
	CharsetLatinAmerica
	CharsetKorea
	CharsetSlovenia
	CharsetChina

	CharsetCroatia = CharsetSlovenia
)

func (c Charset) valid() bool {
	return c <= CharsetChina
}

// Code page, selects the symbols for 0x80-0xFF
type Codepage byte

const (
	CP437      Codepage = 0 // USA, Standard Europe
	Katakana   Codepage = 1
	CP850      Codepage = 2 // Multilingual
	CP860      Codepage = 3 // Portuguese
	CP863      Codepage = 4 // Canadian-French
	CP865      Codepage = 5 // Nordic
	WCP1251    Codepage = 6 // Cyrillic
	CP866      Codepage = 7 // Cyrillic #2
	MIK        Codepage = 8 // Cyrillic/Bulgarian
	CP755      Codepage = 9 // East Europe, Latvian 2
	Iran       Codepage = 10
	CP862      Codepage = 15 // Hebrew
	WCP1252    Codepage = 16 // Latin 1
	WCP1253    Codepage = 17 // Greek
	CP852      Codepage = 18 // Latin 2
	CP858      Codepage = 19 // Multilingual Latin 1 + Euro
	Iran2      Codepage = 20
	Latvian    Codepage = 21
	CP864      Codepage = 22 // Arabic
	ISO8859_1  Codepage = 23 // West Europe
	CP737      Codepage = 24 // Greek
	WCP1257    Codepage = 25 // Baltic
	Thai       Codepage = 26
	CP720      Codepage = 27 // Arabic
	CP855      Codepage = 28
	CP857      Codepage = 29 // Turkish
	WCP1250    Codepage = 30 // Central Europe
	CP775      Codepage = 31
	WCP1254    Codepage = 32 // Turkish
	WCP1255    Codepage = 33 // Hebrew
	WCP1256    Codepage = 34 // Arabic
	WCP1258    Codepage = 35 // Vietnam
	ISO8859_2  Codepage = 36 // Latin 2
	ISO8859_3  Codepage = 37 // Latin 3
	ISO8859_4  Codepage = 38 // Baltic
	ISO8859_5  Codepage = 39 // Cyrillic
	ISO8859_6  Codepage = 40 // Arabic
	ISO8859_7  Codepage = 41 // Greek
	ISO8859_8  Codepage = 42 // Hebrew
	ISO8859_9  Codepage = 43 // Turkish
	ISO8859_15 Codepage = 44 // Latin 3
	Thai2      Codepage = 45
	CP856      Codepage = 46
	CP874      Codepage = 47
)

func (p Codepage) valid() bool {
	return p <= CP874 && (p <= Iran || p >= CP862)
}
