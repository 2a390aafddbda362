// Package printer drives a TTL serial thermal receipt printer.
//
// The link has no flow control and the device never acknowledges anything,
// so every byte is paced by an estimate of how long the device takes to
// deal with what it has already been sent. Sending too fast overruns the
// printer's buffer and garbles output, the estimates come from the serial
// byte time and the per-dot print and feed times.
//
// A Printer is not safe for concurrent use, wrap it in a Locked if more than
// one goroutine needs to print.
package printer

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// Transport is the link to the device, usually a serial port. Reads are only
// used for the paper status query and may return nothing.
type Transport interface {
	io.Writer
	io.Reader
}

const (
	DefaultBaud         = 19200
	DefaultHeatTime     = 120
	DefaultDotPrintTime = 30 * time.Millisecond
	DefaultDotFeedTime  = 2100 * time.Microsecond

	// The printer ignores data for a while after power up
	coldBootDelay = 500 * time.Millisecond
	// Settle time between the wake byte and sleep off on newer firmware
	wakeSettleDelay = 50 * time.Millisecond
	oldWakeRepeats  = 10
	oldWakeDelay    = 100 * time.Millisecond
)

// Options are fixed for the life of a Printer. Start from DefaultOptions,
// the heat and density values are sent as given.
type Options struct {
	Baud     int
	Firmware Firmware

	HeatDots     byte
	HeatTime     byte
	HeatInterval byte
	Density      byte
	BreakTime    byte

	DotPrintTime time.Duration
	DotFeedTime  time.Duration

	Clock  Clock
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Baud:         DefaultBaud,
		Firmware:     DefaultFirmware,
		HeatDots:     11,
		HeatTime:     DefaultHeatTime,
		HeatInterval: 40,
		Density:      10,
		BreakTime:    2,
		DotPrintTime: DefaultDotPrintTime,
		DotFeedTime:  DefaultDotFeedTime,
	}
}

type Stats struct {
	BytesSent int64
	ResumeAt  time.Time
}

// Printer is a session with one device. It owns the transport for writing
// and is the only thing that may write to it.
type Printer struct {
	t       Transport
	opts    Options
	state   State
	gate    *deadlineGate
	clock   Clock
	encoder *charmap.Charmap
	logger  *slog.Logger
	sent    int64
}

// New takes over the transport, wakes and resets the device, and sends the
// heat and density settings.
func New(t Transport, opts Options) (*Printer, error) {
	if opts.Baud <= 0 {
		opts.Baud = DefaultBaud
	}
	if opts.Firmware <= 0 {
		opts.Firmware = DefaultFirmware
	}
	if opts.DotPrintTime <= 0 {
		opts.DotPrintTime = DefaultDotPrintTime
	}
	if opts.DotFeedTime <= 0 {
		opts.DotFeedTime = DefaultDotFeedTime
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Density > 31 || opts.BreakTime > 7 {
		return nil, invalid("density", fmt.Sprintf("%d/%d", opts.Density, opts.BreakTime), "density 0-31 and break time 0-7")
	}

	p := &Printer{
		t:       t,
		opts:    opts,
		gate:    newDeadlineGate(opts.Clock),
		clock:   opts.Clock,
		encoder: charmapFor(CP437),
		logger:  opts.Logger,
	}
	p.state = State{
		Firmware:     opts.Firmware,
		ByteTime:     byteTime(opts.Baud),
		DotPrintTime: opts.DotPrintTime,
		DotFeedTime:  opts.DotFeedTime,
	}
	p.state.reset()

	p.logger.Debug("Initialising printer",
		"baud", opts.Baud,
		"firmware", opts.Firmware.String(),
		"heatTime", opts.HeatTime,
	)

	p.gate.set(coldBootDelay)
	if err := p.Wake(); err != nil {
		return nil, err
	}
	if err := p.Reset(); err != nil {
		return nil, err
	}
	if err := p.writeCommand(setHeatConfig(opts.HeatDots, opts.HeatTime, opts.HeatInterval)); err != nil {
		return nil, err
	}
	if err := p.writeCommand(setPrintDensity(opts.Density, opts.BreakTime)); err != nil {
		return nil, err
	}
	return p, nil
}

// State returns a copy of the host's model of the device
func (p *Printer) State() State {
	return p.state
}

func (p *Printer) Stats() Stats {
	return Stats{BytesSent: p.sent, ResumeAt: p.gate.resumeAt}
}

// send writes straight to the transport with no pacing
func (p *Printer) send(b []byte) error {
	n, err := p.t.Write(b)
	p.sent += int64(n)
	if err != nil {
		return fmt.Errorf("Couldn't write %d bytes to printer:\n%w", len(b), err)
	}
	return nil
}

// writeCommand sends a command as one burst: a single wait for the previous
// deadline, then a deadline of one byte time per byte sent. Operations
// with a better estimate set their own deadline afterwards.
func (p *Printer) writeCommand(b []byte) error {
	p.gate.wait()
	if err := p.send(b); err != nil {
		return err
	}
	p.gate.set(time.Duration(len(b)) * p.state.ByteTime)
	return nil
}

// Write sends text, pacing every byte with the line timing model. XOFF
// bytes are dropped rather than sent.
func (p *Printer) Write(b []byte) (int, error) {
	for i, c := range b {
		if c == xoff {
			continue
		}
		p.gate.wait()
		if err := p.send([]byte{c}); err != nil {
			return i, err
		}
		p.gate.set(p.state.advance(c))
	}
	return len(b), nil
}

// Print encodes text in the current code page and sends it. In sideways
// mode the text is reversed so that it reads correctly once rotated.
func (p *Printer) Print(text string) error {
	if p.state.Sideways {
		text = reverse(text)
	}
	_, err := p.Write(encodeText(p.encoder, text))
	return err
}

func (p *Printer) Println(text string) error {
	if err := p.Print(text); err != nil {
		return err
	}
	_, err := p.Write([]byte{newline})
	return err
}

// PrintlnWrapped word-wraps text to the current column count first. Wrapping
// doesn't apply in sideways mode.
func (p *Printer) PrintlnWrapped(text string) error {
	if !p.state.Sideways {
		text = wrapText(text, p.state.MaxColumn)
	}
	return p.Println(text)
}

// Reset reinitialises the device. Formatting returns to the power on state.
func (p *Printer) Reset() error {
	p.logger.Debug("Resetting printer")
	if err := p.writeCommand(initPrinter()); err != nil {
		return err
	}
	p.state.reset()
	p.encoder = charmapFor(CP437)
	if p.state.Firmware.has(capTabStops) {
		if err := p.writeCommand(setTabStops()); err != nil {
			return err
		}
		for _, stops := range defaultTabStops {
			if err := p.writeCommand(stops); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetDefault restores the default text formatting without a full reset
func (p *Printer) SetDefault() error {
	steps := []func() error{
		p.Online,
		func() error { return p.Inverse(false) },
		func() error { return p.UpsideDown(false) },
		func() error { return p.DoubleHeight(false) },
		func() error { return p.DoubleWidth(false) },
		func() error { return p.Strikethrough(false) },
		func() error { return p.Bold(false) },
		func() error { return p.RotateSideways(false) },
		func() error { return p.SmallFont(false) },
		func() error { return p.Justify(Left) },
		func() error { return p.SetSize(Small) },
		func() error { return p.Underline(NoUnderline) },
		func() error { return p.SetBarcodeHeight(DefaultBarcodeHeight) },
		func() error { return p.SetCharset(CharsetUK) },
		func() error { return p.SetCodePage(CP437) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// SetTimes retunes the time for the paper to advance one dot when printing
// and when feeding, in microseconds. Both vary with supply voltage and paper.
func (p *Printer) SetTimes(printMicros, feedMicros int) error {
	if printMicros < 0 || feedMicros < 0 {
		return invalid("set times", fmt.Sprintf("%d/%d", printMicros, feedMicros), "zero or more microseconds")
	}
	p.state.DotPrintTime = time.Duration(printMicros) * time.Microsecond
	p.state.DotFeedTime = time.Duration(feedMicros) * time.Microsecond
	return nil
}

func (p *Printer) SetHeatTime(heatTime byte) error {
	p.logger.Debug("Setting heat time", "heatTime", heatTime)
	return p.writeCommand(setHeatConfig(p.opts.HeatDots, heatTime, p.opts.HeatInterval))
}

// Feed advances the paper by whole lines
func (p *Printer) Feed(lines int) error {
	if lines < 0 || lines > 255 {
		return invalid("feed", lines, "0-255 lines")
	}
	if !p.state.Firmware.has(capFeedCommand) {
		// ESC d feeds far more than asked on older firmware, send newlines
		for range lines {
			if _, err := p.Write([]byte{newline}); err != nil {
				return err
			}
		}
		return nil
	}

	if err := p.writeCommand(feedLines(byte(lines))); err != nil {
		return err
	}
	// each line is a full character height of feed
	p.gate.set(time.Duration(lines*p.state.CharHeight) * p.state.DotFeedTime)
	p.state.endLine()
	return nil
}

// FeedRows advances the paper by individual dot rows
func (p *Printer) FeedRows(rows int) error {
	if rows < 0 || rows > 255 {
		return invalid("feed rows", rows, "0-255 rows")
	}
	if err := p.writeCommand(feedRows(byte(rows))); err != nil {
		return err
	}
	p.gate.set(time.Duration(rows) * p.state.DotFeedTime)
	p.state.endLine()
	return nil
}

// Flush prints anything left in the device's buffer
func (p *Printer) Flush() error {
	return p.writeCommand(flush())
}

func (p *Printer) TestPage() error {
	if err := p.writeCommand(printTestPage()); err != nil {
		return err
	}
	p.gate.set(p.state.DotPrintTime*24*26 + p.state.DotFeedTime*(6*26+30))
	return nil
}

func (p *Printer) Online() error {
	return p.writeCommand(setOnline(true))
}

// Offline makes the device ignore print commands until Online is called
func (p *Printer) Offline() error {
	return p.writeCommand(setOnline(false))
}

// Sleep puts the device in its low power state after the given number of
// idle seconds. Call Wake before printing again.
func (p *Printer) Sleep(seconds int) error {
	word := p.state.Firmware.has(capSleepWord)
	limit := 0xFF
	if word {
		limit = 0xFFFF
	}
	if seconds < 0 || seconds > limit {
		return invalid("sleep", seconds, fmt.Sprintf("0-%d seconds", limit))
	}
	p.logger.Debug("Putting printer to sleep", "seconds", seconds)
	return p.writeCommand(sleepAfter(uint16(seconds), word))
}

// Wake brings the device out of its low power state
func (p *Printer) Wake() error {
	if err := p.writeCommand(wakeByte()); err != nil {
		return err
	}
	if p.state.Firmware.has(capWakeSleepOff) {
		p.clock.Sleep(wakeSettleDelay)
		return p.writeCommand(sleepOff())
	}
	for range oldWakeRepeats {
		if err := p.writeCommand([]byte{Esc}); err != nil {
			return err
		}
		p.gate.set(oldWakeDelay)
	}
	return nil
}

// HasPaper asks the device for its paper sensor status. The device isn't
// reliable about answering, so no answer is taken to mean paper is loaded.
func (p *Printer) HasPaper() (bool, error) {
	if err := p.Flush(); err != nil {
		return false, err
	}
	if err := p.writeCommand(queryStatus(p.state.Firmware)); err != nil {
		return false, err
	}

	status := make([]byte, 1)
	n, err := p.t.Read(status)
	if err != nil || n == 0 {
		p.logger.Debug("No paper status from printer, assuming paper present", "error", err)
		return true, nil
	}
	// bit 2 set means no paper
	return status[0]&0x04 == 0, nil
}
