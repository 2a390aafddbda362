package printer

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"
)

// fakeClock moves forward only when something sleeps on it
type fakeClock struct {
	now   time.Time
	slept time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.slept += d
}

// recordingTransport keeps every write separately so bursts can be told apart
type recordingTransport struct {
	writes   [][]byte
	status   []byte
	writeErr error
}

func (r *recordingTransport) Write(b []byte) (int, error) {
	if r.writeErr != nil {
		return 0, r.writeErr
	}
	r.writes = append(r.writes, bytes.Clone(b))
	return len(b), nil
}

func (r *recordingTransport) Read(b []byte) (int, error) {
	if len(r.status) == 0 {
		return 0, io.EOF
	}
	n := copy(b, r.status)
	r.status = r.status[n:]
	return n, nil
}

func (r *recordingTransport) bytes() []byte {
	return bytes.Join(r.writes, nil)
}

func (r *recordingTransport) clear() {
	r.writes = nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestPrinter returns a printer on the given firmware that has finished
// starting up, with the start up bytes cleared from the transport.
func newTestPrinter(t *testing.T, fw Firmware) (*Printer, *recordingTransport, *fakeClock) {
	t.Helper()
	tr := &recordingTransport{}
	clock := newFakeClock()
	opts := DefaultOptions()
	opts.Firmware = fw
	opts.Clock = clock
	opts.Logger = quietLogger()
	p, err := New(tr, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.clear()
	return p, tr, clock
}

func assertBytes(t *testing.T, expected, got []byte) {
	t.Helper()
	if !bytes.Equal(expected, got) {
		t.Errorf("expected bytes %v, got %v", expected, got)
	}
}
