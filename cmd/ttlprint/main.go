package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"tomgalvin.uk/ttlprint/internal/config"
	"tomgalvin.uk/ttlprint/internal/journal"
	"tomgalvin.uk/ttlprint/internal/printer"
	"tomgalvin.uk/ttlprint/internal/server"
	"tomgalvin.uk/ttlprint/internal/transport"
)

type mainOptions struct {
	ConfigPath string

	// Text
	Size      string
	Justify   string
	Underline int
	Bold      bool
	Inverse   bool
	Wrap      bool
	Feed      int

	// Barcode
	BarcodeType   string
	BarcodeHeight int

	// Banner
	Font     string
	FontSize int

	LineAtATime bool
}

const usage = `Usage: ttlprint [flags] <command> [args]

Commands:
  serve              run the HTTP API
  text <text>        print a line of text, "-" reads stdin
  barcode <data>     print a barcode
  image <file>       print an image file
  banner <text>      print text rendered in a TrueType font
  paper              report whether the printer has paper
  testpage           print the printer's built in test page
  tour               print a sample of every feature
  calibrate          print bars at increasing heat times
  ports              list serial ports

Flags:
`

func main() {
	var options mainOptions
	cfg := config.Default()

	flag.StringVar(&options.ConfigPath, "config", "", "YAML config file")
	flag.StringVar(&cfg.Port, "port", "", "Serial device, tcp://host:port or ble://name")
	flag.IntVar(&cfg.Baud, "baud", cfg.Baud, "Baud rate")
	flag.IntVar(&cfg.Firmware, "firmware", cfg.Firmware, "Printer firmware version, e.g. 268 for 2.68")
	flag.IntVar(&cfg.HeatTime, "heat-time", cfg.HeatTime, "Heating time in units of 10us")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.StringVar(&cfg.Listen, "listen", cfg.Listen, "Address for serve to listen on")
	flag.StringVar(&cfg.Journal, "journal", cfg.Journal, "SQLite database for the job journal, empty to disable")

	flag.StringVarP(&options.Size, "size", "s", "", "Text size S, M or L")
	flag.StringVarP(&options.Justify, "justify", "j", "", "Justify L, C or R")
	flag.IntVarP(&options.Underline, "underline", "u", 0, "Underline weight 0, 1 or 2")
	flag.BoolVarP(&options.Bold, "bold", "b", false, "Bold text")
	flag.BoolVarP(&options.Inverse, "inverse", "i", false, "White on black text")
	flag.BoolVarP(&options.Wrap, "wrap", "w", false, "Word wrap text to the line width")
	flag.IntVarP(&options.Feed, "feed", "f", 0, "Lines to feed afterwards")
	flag.StringVarP(&options.BarcodeType, "type", "t", "CODE128", "Barcode symbology")
	flag.IntVar(&options.BarcodeHeight, "barcode-height", 0, "Barcode height in dots")
	flag.StringVar(&options.Font, "font", "gomono", "Banner font: gomono, goregular or gobold")
	flag.IntVar(&options.FontSize, "font-size", 48, "Banner font size in dots")
	flag.BoolVar(&options.LineAtATime, "line-at-a-time", false, "Send bitmaps one row at a time")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.SetInterspersed(true)
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	err := execute(&options, cfg, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers the config file and environment under any flags that
// were given on the command line
func loadConfig(options *mainOptions, fromFlags config.Config) (config.Config, error) {
	cfg, err := config.Load(options.ConfigPath)
	if err != nil {
		return cfg, err
	}

	overrides := []struct {
		name  string
		apply func()
	}{
		{"port", func() { cfg.Port = fromFlags.Port }},
		{"baud", func() { cfg.Baud = fromFlags.Baud }},
		{"firmware", func() { cfg.Firmware = fromFlags.Firmware }},
		{"heat-time", func() { cfg.HeatTime = fromFlags.HeatTime }},
		{"log-level", func() { cfg.LogLevel = fromFlags.LogLevel }},
		{"listen", func() { cfg.Listen = fromFlags.Listen }},
		{"journal", func() { cfg.Journal = fromFlags.Journal }},
	}
	for _, o := range overrides {
		if flag.CommandLine.Changed(o.name) {
			o.apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("Invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func execute(options *mainOptions, fromFlags config.Config, args []string) error {
	cfg, err := loadConfig(options, fromFlags)
	if err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	command, args := args[0], args[1:]
	if command == "ports" {
		return listPorts()
	}
	run, ok := commands[command]
	if !ok {
		flag.Usage()
		return fmt.Errorf("Unknown command %q", command)
	}

	port, err := transport.Open(cfg.Port, transport.Options{
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer port.Close()

	opts := cfg.PrinterOptions()
	opts.Logger = logger.With("src", "printer")
	p, err := printer.New(port, opts)
	if err != nil {
		return fmt.Errorf("Couldn't initialise printer:\n%w", err)
	}

	s := &server.Server{Printer: printer.NewLocked(p), Logger: logger}
	if cfg.Journal != "" {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			return err
		}
		defer j.Close()
		s.Journal = j
	}

	return run(&env{
		options: options,
		cfg:     cfg,
		server:  s,
		logger:  logger,
		args:    args,
	})
}

func listPorts() error {
	ports, err := transport.ListSerialPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		return errors.New("No serial ports found")
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}
