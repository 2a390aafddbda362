package transport

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// HM-10 style UART modules expose one characteristic for both directions
var (
	uartService        = bluetooth.New16BitUUID(0xFFE0)
	uartCharacteristic = bluetooth.New16BitUUID(0xFFE1)
)

const (
	scanTimeout = 30 * time.Second
	// Largest write the module takes without a raised MTU
	bleWriteSize = 20
)

// blePort bridges to the printer's serial pins over a BLE UART module. The
// module runs its serial side at whatever baud it's configured for, so the
// baud in Options doesn't apply here.
type blePort struct {
	device bluetooth.Device
	uart   bluetooth.DeviceCharacteristic
	notify *notifyBuffer

	readTimeout time.Duration
	logger      *slog.Logger
}

func openBLE(name string, readTimeout time.Duration, logger *slog.Logger) (Port, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("Couldn't enable Bluetooth:\n%w", err)
	}

	address, err := scanFor(adapter, name, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("Connecting to device...")
	device, err := adapter.Connect(address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("Couldn't connect to %s:\n%w", name, err)
	}

	logger.Debug("Discovering service...")
	services, err := device.DiscoverServices([]bluetooth.UUID{uartService})
	if err != nil {
		device.Disconnect()
		return nil, fmt.Errorf("Couldn't discover services on %s:\n%w", name, err)
	}
	if len(services) == 0 {
		device.Disconnect()
		return nil, fmt.Errorf("No UART service on %s", name)
	}

	logger.Debug("Discovering characteristics...")
	characteristics, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{uartCharacteristic})
	if err != nil {
		device.Disconnect()
		return nil, fmt.Errorf("Couldn't discover characteristics on %s:\n%w", name, err)
	}
	if len(characteristics) == 0 {
		device.Disconnect()
		return nil, fmt.Errorf("No UART characteristic on %s", name)
	}

	p := &blePort{
		device:      device,
		uart:        characteristics[0],
		notify:      newNotifyBuffer(),
		readTimeout: readTimeout,
		logger:      logger,
	}
	if err := p.uart.EnableNotifications(p.notify.push); err != nil {
		device.Disconnect()
		return nil, fmt.Errorf("Couldn't enable notifications:\n%w", err)
	}

	logger.Info("Connected to BLE UART", "name", name)
	return p, nil
}

func scanFor(adapter *bluetooth.Adapter, name string, logger *slog.Logger) (bluetooth.Address, error) {
	devices := make(chan bluetooth.ScanResult, 1)
	scanErr := make(chan error, 1)

	go func() {
		err := adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if result.LocalName() == name {
				logger.Info("Found device", "deviceName", result.LocalName())
				select {
				case devices <- result:
				default:
				}
				adapter.StopScan()
			}
		})
		if err != nil {
			scanErr <- err
		}
	}()

	select {
	case dev := <-devices:
		return dev.Address, nil
	case err := <-scanErr:
		return bluetooth.Address{}, fmt.Errorf("Couldn't scan for devices:\n%w", err)
	case <-time.After(scanTimeout):
		adapter.StopScan()
		return bluetooth.Address{}, fmt.Errorf("No device named %q found in %v", name, scanTimeout)
	}
}

func (p *blePort) Write(data []byte) (int, error) {
	written := 0
	for len(data) > 0 {
		n := min(len(data), bleWriteSize)
		if _, err := p.uart.WriteWithoutResponse(data[:n]); err != nil {
			return written, fmt.Errorf("Couldn't write to BLE UART:\n%w", err)
		}
		written += n
		data = data[n:]
	}
	return written, nil
}

func (p *blePort) Read(b []byte) (int, error) {
	return p.notify.read(b, p.readTimeout), nil
}

func (p *blePort) Close() error {
	p.logger.Info("Disconnecting from BLE UART")
	return p.device.Disconnect()
}

// notifyBuffer holds bytes notified by the module until something reads
// them
type notifyBuffer struct {
	mu    sync.Mutex
	buf   []byte
	ready chan struct{}
}

func newNotifyBuffer() *notifyBuffer {
	return &notifyBuffer{ready: make(chan struct{}, 1)}
}

func (n *notifyBuffer) push(data []byte) {
	n.mu.Lock()
	n.buf = append(n.buf, data...)
	n.mu.Unlock()

	select {
	case n.ready <- struct{}{}:
	default:
	}
}

// read copies out whatever is buffered, waiting up to timeout for something
// to arrive if the buffer is empty
func (n *notifyBuffer) read(p []byte, timeout time.Duration) int {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		n.mu.Lock()
		if len(n.buf) > 0 {
			c := copy(p, n.buf)
			n.buf = n.buf[c:]
			n.mu.Unlock()
			return c
		}
		n.mu.Unlock()

		select {
		case <-n.ready:
		case <-timer.C:
			return 0
		}
	}
}
