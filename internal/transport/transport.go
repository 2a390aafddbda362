// Package transport opens the byte link to a printer. The printer's TTL
// serial port is reached directly, through a serial to TCP bridge, or
// through a BLE UART module wired to its RX and TX pins.
package transport

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Port is an open link. Reads return whatever arrived within the read
// timeout, possibly nothing, rather than blocking.
type Port interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
	Close() error
}

type Options struct {
	Baud        int
	ReadTimeout time.Duration
	Logger      *slog.Logger
}

const (
	tcpPrefix = "tcp://"
	blePrefix = "ble://"

	defaultReadTimeout = 500 * time.Millisecond
)

// Open connects to addr, which is one of
//
//	tcp://host:port   a serial to TCP bridge
//	ble://name        a BLE UART module advertising the given name
//	anything else     a local serial device such as /dev/ttyUSB0 or COM3
func Open(addr string, opts Options) (Port, error) {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger.With("src", "transport", "addr", addr)

	switch {
	case addr == "":
		return nil, fmt.Errorf("No printer port given")
	case strings.HasPrefix(addr, tcpPrefix):
		return openTCP(strings.TrimPrefix(addr, tcpPrefix), opts.ReadTimeout, logger)
	case strings.HasPrefix(addr, blePrefix):
		name := strings.TrimPrefix(addr, blePrefix)
		if name == "" {
			return nil, fmt.Errorf("No device name in %q", addr)
		}
		return openBLE(name, opts.ReadTimeout, logger)
	default:
		return openSerial(addr, opts.Baud, opts.ReadTimeout, logger)
	}
}
