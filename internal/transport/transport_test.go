package transport

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"
)

func quietOptions() Options {
	return Options{
		Baud:        19200,
		ReadTimeout: 50 * time.Millisecond,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestOpenTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 3)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		received <- buf
		conn.Write([]byte{0x04})
		// hold the connection open until the test is done with it
		io.Copy(io.Discard, conn)
	}()

	port, err := Open("tcp://"+ln.Addr().String(), quietOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer port.Close()

	if _, err := port.Write([]byte{0x1B, 0x76, 0}); err != nil {
		t.Fatal(err)
	}
	if got := <-received; !bytes.Equal(got, []byte{0x1B, 0x76, 0}) {
		t.Errorf("expected status query, got %v", got)
	}

	status := make([]byte, 1)
	n, err := port.Read(status)
	if err != nil || n != 1 || status[0] != 0x04 {
		t.Errorf("expected status byte 4, got %v (%d bytes, %v)", status, n, err)
	}

	// nothing more coming, a timeout is an empty read rather than an error
	n, err = port.Read(status)
	if err != nil || n != 0 {
		t.Errorf("expected an empty read, got %d bytes and %v", n, err)
	}
}

func TestOpenErrors(t *testing.T) {
	tests := []string{
		"",
		"ble://",
		"tcp://127.0.0.1:1",
	}
	for _, addr := range tests {
		if _, err := Open(addr, quietOptions()); err == nil {
			t.Errorf("expected an error opening %q", addr)
		}
	}
}

func TestOpenSerialBadBaud(t *testing.T) {
	opts := quietOptions()
	opts.Baud = 0
	if _, err := Open("/dev/ttyUSB0", opts); err == nil {
		t.Errorf("expected an error for baud 0")
	}
}

func TestFilterPorts(t *testing.T) {
	ports := []string{"/dev/ttyUSB0", "/dev/ttyUSB0", "/dev/tty.Bluetooth-Incoming-Port", "/dev/cu.usbserial-1410", "/dev/null", "/dev/ttyAMA0"}
	expected := []string{"/dev/ttyUSB0", "/dev/cu.usbserial-1410", "/dev/ttyAMA0"}

	got := filterPorts(ports, "linux")
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, got)
		}
	}

	if got := filterPorts([]string{"COM3", "/dev/ttyUSB0"}, "windows"); len(got) != 1 || got[0] != "COM3" {
		t.Errorf("expected only COM3 on windows, got %v", got)
	}
}

func TestNotifyBuffer(t *testing.T) {
	n := newNotifyBuffer()
	p := make([]byte, 4)

	if got := n.read(p, 10*time.Millisecond); got != 0 {
		t.Errorf("expected nothing from an empty buffer, got %d bytes", got)
	}

	n.push([]byte{1, 2, 3, 4, 5})
	if got := n.read(p, 10*time.Millisecond); got != 4 || !bytes.Equal(p, []byte{1, 2, 3, 4}) {
		t.Errorf("expected the first 4 bytes, got %v", p[:got])
	}
	if got := n.read(p, 10*time.Millisecond); got != 1 || p[0] != 5 {
		t.Errorf("expected the last byte, got %v", p[:got])
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		n.push([]byte{9})
	}()
	if got := n.read(p, time.Second); got != 1 || p[0] != 9 {
		t.Errorf("expected a late notification to be read, got %v", p[:got])
	}
}
