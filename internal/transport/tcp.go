package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

const dialTimeout = 5 * time.Second

// tcpPort talks to a serial to TCP bridge such as ser2net
type tcpPort struct {
	conn        net.Conn
	readTimeout time.Duration
	logger      *slog.Logger
}

func openTCP(address string, readTimeout time.Duration, logger *slog.Logger) (Port, error) {
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("Couldn't connect to %s:\n%w", address, err)
	}

	logger.Info("Connected to serial bridge")
	return &tcpPort{conn: conn, readTimeout: readTimeout, logger: logger}, nil
}

// Read returns nothing rather than an error when the timeout expires
func (t *tcpPort) Read(p []byte) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.readTimeout)); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(p)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return n, nil
	}
	return n, err
}

func (t *tcpPort) Write(p []byte) (int, error) {
	return t.conn.Write(p)
}

func (t *tcpPort) Close() error {
	t.logger.Info("Disconnecting from serial bridge")
	return t.conn.Close()
}
