// Package config loads printer and server settings from a YAML file, with
// environment variables and then command line flags layered on top.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tomgalvin.uk/ttlprint/internal/printer"
)

type Config struct {
	Port     string `yaml:"port"`
	Baud     int    `yaml:"baud"`
	Firmware int    `yaml:"firmware"`

	HeatTime     int `yaml:"heat_time"`
	HeatDots     int `yaml:"heat_dots"`
	HeatInterval int `yaml:"heat_interval"`
	Density      int `yaml:"density"`
	BreakTime    int `yaml:"break_time"`

	// Microseconds for the paper to move one dot while printing and feeding
	DotPrintMicros int `yaml:"dot_print_us"`
	DotFeedMicros  int `yaml:"dot_feed_us"`

	ReadTimeout time.Duration `yaml:"read_timeout"`

	Listen   string `yaml:"listen"`
	Journal  string `yaml:"journal"`
	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Baud:           printer.DefaultBaud,
		Firmware:       int(printer.DefaultFirmware),
		HeatTime:       printer.DefaultHeatTime,
		HeatDots:       11,
		HeatInterval:   40,
		Density:        10,
		BreakTime:      2,
		DotPrintMicros: int(printer.DefaultDotPrintTime / time.Microsecond),
		DotFeedMicros:  int(printer.DefaultDotFeedTime / time.Microsecond),
		ReadTimeout:    500 * time.Millisecond,
		Listen:         ":8080",
		Journal:        "file:ttlprint.db",
		LogLevel:       "info",
	}
}

// Load reads the file at path over the defaults, if path isn't empty, then
// applies environment overrides. The result isn't validated, flags may still
// change it; call Validate once everything is applied.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("Couldn't read config file:\n%w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("Couldn't parse config file %s:\n%w", path, err)
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("TTLPRINT_PORT"); ok {
		c.Port = v
	}
	for _, e := range []struct {
		name string
		dst  *int
	}{
		{"TTLPRINT_BAUD", &c.Baud},
		{"TTLPRINT_FIRMWARE", &c.Firmware},
	} {
		v, ok := lookup(e.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("Couldn't parse %s=%q:\n%w", e.name, v, err)
		}
		*e.dst = n
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Baud <= 0 {
		errs = append(errs, fmt.Errorf("baud must be positive, got %d", c.Baud))
	}
	if c.Firmware <= 0 {
		errs = append(errs, fmt.Errorf("firmware must be positive, got %d", c.Firmware))
	}
	for _, b := range []struct {
		name  string
		value int
		max   int
	}{
		{"heat_time", c.HeatTime, 255},
		{"heat_dots", c.HeatDots, 255},
		{"heat_interval", c.HeatInterval, 255},
		{"density", c.Density, 31},
		{"break_time", c.BreakTime, 7},
	} {
		if b.value < 0 || b.value > b.max {
			errs = append(errs, fmt.Errorf("%s must be 0-%d, got %d", b.name, b.max, b.value))
		}
	}
	if c.DotPrintMicros < 0 || c.DotFeedMicros < 0 {
		errs = append(errs, fmt.Errorf("dot times can't be negative"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel for slog
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("log_level %q isn't one of debug, info, warn or error", c.LogLevel)
	}
	return level, nil
}

// PrinterOptions maps the settings onto a printer session's options
func (c Config) PrinterOptions() printer.Options {
	opts := printer.DefaultOptions()
	opts.Baud = c.Baud
	opts.Firmware = printer.Firmware(c.Firmware)
	opts.HeatTime = byte(c.HeatTime)
	opts.HeatDots = byte(c.HeatDots)
	opts.HeatInterval = byte(c.HeatInterval)
	opts.Density = byte(c.Density)
	opts.BreakTime = byte(c.BreakTime)
	opts.DotPrintTime = time.Duration(c.DotPrintMicros) * time.Microsecond
	opts.DotFeedTime = time.Duration(c.DotFeedMicros) * time.Microsecond
	return opts
}
