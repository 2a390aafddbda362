package printer

import "time"

// Dimensions in dots for the default font
const (
	charHeightNormal = 24
	charHeightDouble = 48
	lineSpacingReset = 6
	minLineHeight    = 24

	DefaultLineHeight    = 32
	DefaultBarcodeHeight = 50
)

// State is everything the host knows about the device. The device can't be
// asked for any of it, so every command that changes it on the device must
// change it here too.
type State struct {
	Column      int
	MaxColumn   int
	CharHeight  int
	LineSpacing int

	PrintMode PrintMode
	AltFont   bool
	Sideways  bool

	Firmware      Firmware
	BarcodeHeight int

	// The last byte sent through the text path, used to tell a blank line
	// (pure feed) from the end of a line of text (print then feed)
	PrevByte byte

	DotPrintTime time.Duration
	DotFeedTime  time.Duration
	ByteTime     time.Duration
}

// byteTime is the time to clock one byte out at the given baud rate: 11
// bits rather than 8 to allow for start, stop and an idle bit.
func byteTime(baud int) time.Duration {
	return time.Duration(11 * float64(time.Second) / float64(baud))
}

func (s *State) reset() {
	s.PrevByte = newline
	s.Column = 0
	s.MaxColumn = 32
	s.CharHeight = charHeightNormal
	s.LineSpacing = lineSpacingReset
	s.BarcodeHeight = DefaultBarcodeHeight
	s.PrintMode = 0
	s.AltFont = false
	s.Sideways = false
}

// columns for the current font and width
func (s *State) columns(doubleWidth bool) int {
	switch {
	case doubleWidth && s.AltFont:
		return 21
	case doubleWidth:
		return 16
	case s.AltFont:
		return 42
	default:
		return 32
	}
}

// applyPrintMode derives the character height and column count from the
// mode bits alone, so the result doesn't depend on the order bits were
// toggled in.
func (s *State) applyPrintMode(m PrintMode) {
	s.PrintMode = m
	s.AltFont = m&SmallFontMode != 0
	if m&DoubleHeightMode != 0 {
		s.CharHeight = charHeightDouble
	} else {
		s.CharHeight = charHeightNormal
	}
	s.MaxColumn = s.columns(m&DoubleWidthMode != 0)
}

// applySize overrides whatever the mode bits implied
func (s *State) applySize(size Size) {
	switch size {
	case Small:
		s.CharHeight = charHeightNormal
		s.MaxColumn = s.columns(false)
	case Medium:
		s.CharHeight = charHeightDouble
		s.MaxColumn = s.columns(false)
	case Large:
		s.CharHeight = charHeightDouble
		s.MaxColumn = s.columns(true)
	}
}

// advance runs the line timing model for one byte of text that has just
// been sent and returns how long the device will take to deal with it.
func (s *State) advance(c byte) time.Duration {
	d := s.ByteTime
	if c == newline || s.Column >= s.MaxColumn {
		if s.PrevByte == newline {
			// blank line, paper is fed without heating the print head
			d += time.Duration(s.CharHeight+s.LineSpacing) * s.DotFeedTime
		} else {
			d += time.Duration(s.CharHeight)*s.DotPrintTime + time.Duration(s.LineSpacing)*s.DotFeedTime
			// a wrap ends the line just like a newline would
			c = newline
		}
		s.Column = 0
	} else {
		s.Column++
	}
	s.PrevByte = c
	return d
}

// endLine is used after output that leaves the head at the start of a line
// without going through the text path
func (s *State) endLine() {
	s.PrevByte = newline
	s.Column = 0
}
