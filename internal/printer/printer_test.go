package printer

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestNewStartupSequence(t *testing.T) {
	tests := []struct {
		firmware Firmware
		expected [][]byte
	}{
		{
			firmware: 268,
			expected: [][]byte{
				{0xFF},
				{Esc, 0x76, 0},
				{Esc, 0x40},
				{Esc, 0x44},
				{4, 8, 12, 16},
				{20, 24, 28, 0},
				{Esc, 0x37, 11, 120, 40},
				{DC2, 0x23, 2<<5 | 10},
			},
		},
		{
			firmware: 263,
			expected: [][]byte{
				{0xFF},
				{Esc}, {Esc}, {Esc}, {Esc}, {Esc}, {Esc}, {Esc}, {Esc}, {Esc}, {Esc},
				{Esc, 0x40},
				{Esc, 0x37, 11, 120, 40},
				{DC2, 0x23, 2<<5 | 10},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.firmware.String(), func(t *testing.T) {
			tr := &recordingTransport{}
			clock := newFakeClock()
			opts := DefaultOptions()
			opts.Firmware = test.firmware
			opts.Clock = clock
			opts.Logger = quietLogger()

			if _, err := New(tr, opts); err != nil {
				t.Fatalf("New: %v", err)
			}
			if len(tr.writes) != len(test.expected) {
				t.Fatalf("expected %d writes, got %d: %v", len(test.expected), len(tr.writes), tr.writes)
			}
			for i := range test.expected {
				assertBytes(t, test.expected[i], tr.writes[i])
			}
			if clock.slept < coldBootDelay {
				t.Errorf("expected at least %v of start up delay, got %v", coldBootDelay, clock.slept)
			}
		})
	}
}

func TestNewRejectsDensity(t *testing.T) {
	tr := &recordingTransport{}
	opts := DefaultOptions()
	opts.Density = 40
	opts.Clock = newFakeClock()

	if _, err := New(tr, opts); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
	if len(tr.writes) != 0 {
		t.Errorf("expected nothing written, got %v", tr.writes)
	}
}

func TestLargeText(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)

	if err := p.SetSize(Large); err != nil {
		t.Fatal(err)
	}
	if p.State().MaxColumn != 16 {
		t.Errorf("expected 16 columns, got %d", p.State().MaxColumn)
	}
	if err := p.Println("Large"); err != nil {
		t.Fatal(err)
	}

	assertBytes(t, []byte{GS, 0x21, 0x11, 'L', 'a', 'r', 'g', 'e', '\n'}, tr.bytes())
	// one burst for the command then one write per character
	if len(tr.writes) != 7 {
		t.Errorf("expected 7 writes, got %d", len(tr.writes))
	}
}

func TestTextFiltersXoff(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)

	n, err := p.Write([]byte{'a', xoff, 'b'})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 bytes consumed, got %d", n)
	}
	assertBytes(t, []byte("ab"), tr.bytes())
	if p.State().Column != 2 {
		t.Errorf("expected column 2, got %d", p.State().Column)
	}
}

func TestWriteError(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)
	broken := errors.New("unplugged")
	tr.writeErr = broken

	if err := p.Println("hello"); !errors.Is(err, broken) {
		t.Errorf("expected transport error, got %v", err)
	}
	if err := p.SetSize(Medium); !errors.Is(err, broken) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestCodePageEncoding(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)

	if err := p.Print("€a"); err != nil {
		t.Fatal(err)
	}
	assertBytes(t, []byte{'a'}, tr.bytes())

	tr.clear()
	if err := p.SetCodePage(CP866); err != nil {
		t.Fatal(err)
	}
	if err := p.Print("Ж"); err != nil {
		t.Fatal(err)
	}
	assertBytes(t, []byte{Esc, 0x74, 7, 0x86}, tr.bytes())

	// reset puts the device back on CP437
	if err := p.Reset(); err != nil {
		t.Fatal(err)
	}
	tr.clear()
	if err := p.Print("Ж"); err != nil {
		t.Fatal(err)
	}
	if len(tr.writes) != 0 {
		t.Errorf("expected nothing written, got %v", tr.writes)
	}
}

func TestSidewaysReversesText(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)

	if err := p.RotateSideways(true); err != nil {
		t.Fatal(err)
	}
	if err := p.Println("abc"); err != nil {
		t.Fatal(err)
	}
	assertBytes(t, []byte{Esc, 0x56, 1, 'c', 'b', 'a', '\n'}, tr.bytes())
}

func TestPrintlnWrapped(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)
	if err := p.DoubleWidth(true); err != nil {
		t.Fatal(err)
	}
	tr.clear()

	if err := p.PrintlnWrapped("the quick brown fox jumps over"); err != nil {
		t.Fatal(err)
	}
	assertBytes(t, []byte("the quick brown\nfox jumps over\n"), tr.bytes())
}

func TestFeed(t *testing.T) {
	t.Run("new firmware", func(t *testing.T) {
		p, tr, clock := newTestPrinter(t, 268)
		if err := p.Feed(2); err != nil {
			t.Fatal(err)
		}
		assertBytes(t, []byte{Esc, 0x64, 2}, tr.bytes())

		expected := time.Duration(2*charHeightNormal) * DefaultDotFeedTime
		if got := p.Stats().ResumeAt.Sub(clock.Now()); got != expected {
			t.Errorf("expected feed deadline %v, got %v", expected, got)
		}
	})

	t.Run("old firmware", func(t *testing.T) {
		p, tr, _ := newTestPrinter(t, 263)
		if err := p.Feed(2); err != nil {
			t.Fatal(err)
		}
		assertBytes(t, []byte("\n\n"), tr.bytes())
		if len(tr.writes) != 2 {
			t.Errorf("expected newlines sent one at a time, got %v", tr.writes)
		}
	})
}

func TestSleepEncoding(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)
	if err := p.Sleep(300); err != nil {
		t.Fatal(err)
	}
	assertBytes(t, []byte{Esc, 0x38, 44, 1}, tr.bytes())

	old, oldTr, _ := newTestPrinter(t, 263)
	if err := old.Sleep(300); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
	if err := old.Sleep(30); err != nil {
		t.Fatal(err)
	}
	assertBytes(t, []byte{Esc, 0x38, 30}, oldTr.bytes())
}

func TestWakeNewFirmwareSettles(t *testing.T) {
	p, tr, clock := newTestPrinter(t, 268)
	before := clock.slept

	if err := p.Wake(); err != nil {
		t.Fatal(err)
	}
	assertBytes(t, []byte{0xFF, Esc, 0x76, 0}, tr.bytes())
	if clock.slept-before < wakeSettleDelay {
		t.Errorf("expected at least %v between wake and sleep off, got %v", wakeSettleDelay, clock.slept-before)
	}
}

func TestWakeWaitsForPendingDeadline(t *testing.T) {
	p, _, clock := newTestPrinter(t, 268)
	if err := p.Feed(100); err != nil {
		t.Fatal(err)
	}
	deadline := p.Stats().ResumeAt

	if err := p.Wake(); err != nil {
		t.Fatal(err)
	}
	if clock.Now().Before(deadline) {
		t.Errorf("expected wake to wait until %v, sent at %v", deadline, clock.Now())
	}
}

func TestInvalidArgumentsSendNothing(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)

	tests := []struct {
		name string
		op   func() error
	}{
		{"justify", func() error { return p.Justify(Justify(3)) }},
		{"underline", func() error { return p.Underline(Underline(3)) }},
		{"size", func() error { return p.SetSize(Size(0x05)) }},
		{"print mode", func() error { return p.SetPrintMode(PrintMode(1)) }},
		{"unset print mode", func() error { return p.UnsetPrintMode(PrintMode(0x80)) }},
		{"barcode height low", func() error { return p.SetBarcodeHeight(0) }},
		{"barcode height high", func() error { return p.SetBarcodeHeight(256) }},
		{"charset", func() error { return p.SetCharset(Charset(16)) }},
		{"code page gap", func() error { return p.SetCodePage(Codepage(12)) }},
		{"code page high", func() error { return p.SetCodePage(Codepage(48)) }},
		{"sleep", func() error { return p.Sleep(70000) }},
		{"feed", func() error { return p.Feed(-1) }},
		{"feed rows", func() error { return p.FeedRows(256) }},
		{"times", func() error { return p.SetTimes(-1, 0) }},
		{"bitmap width", func() error { return p.PrintBitmap(0, 1, nil, false) }},
		{"bitmap data", func() error { return p.PrintBitmap(16, 2, []byte{1, 2, 3}, false) }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tr.clear()
			before := p.State()

			err := test.op()
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
			var argErr *ArgumentError
			if !errors.As(err, &argErr) {
				t.Errorf("expected an ArgumentError, got %T", err)
			}
			if len(tr.writes) != 0 {
				t.Errorf("expected nothing written, got %v", tr.writes)
			}
			if p.State() != before {
				t.Errorf("expected state unchanged, got %+v", p.State())
			}
		})
	}
}

func TestLineHeightClamps(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)

	tests := []struct {
		in, sent, spacing int
	}{
		{10, 24, 0},
		{32, 32, 8},
		{300, 255, 231},
	}
	for _, test := range tests {
		tr.clear()
		if err := p.SetLineHeight(test.in); err != nil {
			t.Fatal(err)
		}
		assertBytes(t, []byte{Esc, 0x33, byte(test.sent)}, tr.bytes())
		if p.State().LineSpacing != test.spacing {
			t.Errorf("expected line spacing %d for %d, got %d", test.spacing, test.in, p.State().LineSpacing)
		}
	}
}

func TestResetIsIdempotent(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)

	setup := []func() error{
		func() error { return p.Bold(true) },
		func() error { return p.DoubleWidth(true) },
		func() error { return p.SmallFont(true) },
		func() error { return p.RotateSideways(true) },
		func() error { return p.SetBarcodeHeight(100) },
		func() error { return p.SetLineHeight(40) },
		func() error { return p.Print("abc") },
	}
	for _, f := range setup {
		if err := f(); err != nil {
			t.Fatal(err)
		}
	}

	tr.clear()
	if err := p.Reset(); err != nil {
		t.Fatal(err)
	}
	first, firstBytes := p.State(), tr.bytes()

	tr.clear()
	if err := p.Reset(); err != nil {
		t.Fatal(err)
	}
	if p.State() != first {
		t.Errorf("expected %+v after second reset, got %+v", first, p.State())
	}
	assertBytes(t, firstBytes, tr.bytes())

	s := p.State()
	if s.Column != 0 || s.CharHeight != 24 || s.LineSpacing != 6 || s.MaxColumn != 32 || s.BarcodeHeight != 50 {
		t.Errorf("expected power on state, got %+v", s)
	}
	if s.PrintMode != 0 || s.AltFont || s.Sideways {
		t.Errorf("expected formatting cleared, got %+v", s)
	}
}

func TestSetDefault(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)
	if err := p.SetSize(Large); err != nil {
		t.Fatal(err)
	}
	tr.clear()

	if err := p.SetDefault(); err != nil {
		t.Fatal(err)
	}
	s := p.State()
	if s.MaxColumn != 32 || s.CharHeight != 24 || s.PrintMode != 0 {
		t.Errorf("expected default formatting, got %+v", s)
	}
	last := tr.writes[len(tr.writes)-1]
	assertBytes(t, []byte{Esc, 0x74, 0}, last)
}

func TestHasPaper(t *testing.T) {
	tests := []struct {
		name     string
		firmware Firmware
		status   []byte
		expected bool
		query    []byte
	}{
		{"paper", 268, []byte{0x00}, true, []byte{Esc, 0x76, 0}},
		{"no paper", 268, []byte{0x04}, false, []byte{Esc, 0x76, 0}},
		{"no answer", 268, nil, true, []byte{Esc, 0x76, 0}},
		{"old firmware no paper", 263, []byte{0x0C}, false, []byte{GS, 0x72, 0}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, tr, _ := newTestPrinter(t, test.firmware)
			tr.status = test.status

			got, err := p.HasPaper()
			if err != nil {
				t.Fatal(err)
			}
			if got != test.expected {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
			assertBytes(t, append([]byte{FF}, test.query...), tr.bytes())
		})
	}
}

func TestStatsCountsBytes(t *testing.T) {
	p, _, _ := newTestPrinter(t, 268)
	before := p.Stats().BytesSent

	if err := p.Println("hi"); err != nil {
		t.Fatal(err)
	}
	if got := p.Stats().BytesSent - before; got != 3 {
		t.Errorf("expected 3 bytes counted, got %d", got)
	}
}

func TestLockedSerialisesJobs(t *testing.T) {
	p, tr, _ := newTestPrinter(t, 268)
	l := NewLocked(p)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(func(p *Printer) error {
				return p.Println(fmt.Sprintf("job %d", i))
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	// each job is 6 bytes including the newline and must come out whole
	out := string(tr.bytes())
	if len(out) != 8*6 {
		t.Fatalf("expected %d bytes, got %q", 8*6, out)
	}
	for i := 0; i < len(out); i += 6 {
		if out[i:i+4] != "job " || out[i+5] != '\n' {
			t.Errorf("expected whole jobs, got %q", out)
			break
		}
	}
	state, stats := l.Snapshot()
	if state.Column != 0 {
		t.Errorf("expected column 0, got %d", state.Column)
	}
	if stats.BytesSent < int64(len(out)) {
		t.Errorf("expected at least %d bytes counted, got %d", len(out), stats.BytesSent)
	}
}
