package printer

import (
	"golang.org/x/text/encoding/charmap"
)

// Host-side encoders for the device code pages which have a matching table.
// Code pages without one fall back to CP437, which is also what the device
// uses after a reset.
var codepageCharmaps = map[Codepage]*charmap.Charmap{
	CP437:      charmap.CodePage437,
	CP850:      charmap.CodePage850,
	CP860:      charmap.CodePage860,
	CP863:      charmap.CodePage863,
	CP865:      charmap.CodePage865,
	WCP1251:    charmap.Windows1251,
	CP866:      charmap.CodePage866,
	CP862:      charmap.CodePage862,
	WCP1252:    charmap.Windows1252,
	WCP1253:    charmap.Windows1253,
	CP852:      charmap.CodePage852,
	CP858:      charmap.CodePage858,
	ISO8859_1:  charmap.ISO8859_1,
	WCP1257:    charmap.Windows1257,
	CP855:      charmap.CodePage855,
	WCP1250:    charmap.Windows1250,
	WCP1254:    charmap.Windows1254,
	WCP1255:    charmap.Windows1255,
	WCP1256:    charmap.Windows1256,
	WCP1258:    charmap.Windows1258,
	ISO8859_2:  charmap.ISO8859_2,
	ISO8859_3:  charmap.ISO8859_3,
	ISO8859_4:  charmap.ISO8859_4,
	ISO8859_5:  charmap.ISO8859_5,
	ISO8859_6:  charmap.ISO8859_6,
	ISO8859_7:  charmap.ISO8859_7,
	ISO8859_8:  charmap.ISO8859_8,
	ISO8859_9:  charmap.ISO8859_9,
	ISO8859_15: charmap.ISO8859_15,
	CP874:      charmap.Windows874,
}

func charmapFor(p Codepage) *charmap.Charmap {
	if m, ok := codepageCharmaps[p]; ok {
		return m
	}
	return charmap.CodePage437
}

// encodeText converts a string to the device's 8-bit character set.
// Runes that have no representation are dropped.
func encodeText(m *charmap.Charmap, s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := m.EncodeRune(r); ok {
			out = append(out, b)
		}
	}
	return out
}
