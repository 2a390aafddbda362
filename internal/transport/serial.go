package transport

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"go.bug.st/serial"
)

type serialPort struct {
	serial.Port
	name   string
	logger *slog.Logger
}

// The printer is 8N1 with no flow control
func openSerial(name string, baud int, readTimeout time.Duration, logger *slog.Logger) (Port, error) {
	if baud <= 0 {
		return nil, fmt.Errorf("Invalid baud rate %d for %s", baud, name)
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open serial port %s:\n%w", name, err)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("Couldn't set read timeout on %s:\n%w", name, err)
	}

	logger.Info("Opened serial port", "baud", baud)
	return &serialPort{Port: port, name: name, logger: logger}, nil
}

func (p *serialPort) Close() error {
	p.logger.Info("Closing serial port")
	return p.Port.Close()
}

// ListSerialPorts returns the serial devices that look like they could be
// a USB or on-board UART
func ListSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("Couldn't list serial ports:\n%w", err)
	}
	return filterPorts(ports, runtime.GOOS), nil
}

func filterPorts(ports []string, goos string) []string {
	var filtered []string
	seen := make(map[string]bool)

	for _, port := range ports {
		if seen[port] {
			continue
		}
		seen[port] = true

		if goos == "windows" {
			if strings.HasPrefix(strings.ToUpper(port), "COM") {
				filtered = append(filtered, port)
			}
			continue
		}

		lower := strings.ToLower(port)
		if strings.Contains(lower, "bluetooth") {
			continue
		}
		if strings.Contains(lower, "ttyusb") ||
			strings.Contains(lower, "ttyacm") ||
			strings.Contains(lower, "ttyama") ||
			strings.Contains(lower, "serial0") ||
			strings.Contains(lower, "usbserial") ||
			strings.Contains(lower, "cu.") ||
			strings.Contains(lower, "ttys") {
			filtered = append(filtered, port)
		}
	}
	return filtered
}
