package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tomgalvin.uk/ttlprint/internal/bitmap"
	"tomgalvin.uk/ttlprint/internal/config"
	"tomgalvin.uk/ttlprint/internal/model"
	"tomgalvin.uk/ttlprint/internal/printer"
	"tomgalvin.uk/ttlprint/internal/server"
)

type env struct {
	options *mainOptions
	cfg     config.Config
	server  *server.Server
	logger  *slog.Logger
	args    []string
}

var commands = map[string]func(*env) error{
	"serve":     serve,
	"text":      printText,
	"barcode":   printBarcode,
	"image":     printImage,
	"banner":    printBanner,
	"paper":     paper,
	"testpage":  testPage,
	"tour":      tour,
	"calibrate": calibrate,
}

func (e *env) arg(what string) (string, error) {
	if len(e.args) == 0 {
		return "", fmt.Errorf("Missing %s", what)
	}
	return strings.Join(e.args, " "), nil
}

func serve(e *env) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              e.cfg.Listen,
		Handler:           e.server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		e.logger.Info("Starting server", "listen", e.cfg.Listen)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("Error starting server:\n%w", err)
	case <-ctx.Done():
	}

	e.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func printText(e *env) error {
	text, err := e.arg("text")
	if err != nil {
		return err
	}
	if text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("Couldn't read stdin:\n%w", err)
		}
		text = strings.TrimRight(string(data), "\n")
	}

	req := model.TextRequest{
		Text:      text,
		Size:      e.options.Size,
		Justify:   e.options.Justify,
		Underline: e.options.Underline,
		Bold:      e.options.Bold,
		Inverse:   e.options.Inverse,
		Wrap:      e.options.Wrap,
		Feed:      e.options.Feed,
	}
	_, err = e.server.Run("text", text, func(p *printer.Printer) error {
		return server.PrintText(p, req)
	})
	return err
}

func printBarcode(e *env) error {
	data, err := e.arg("barcode data")
	if err != nil {
		return err
	}
	req := model.BarcodeRequest{
		Data:   data,
		Type:   e.options.BarcodeType,
		Height: e.options.BarcodeHeight,
		Feed:   e.options.Feed,
	}
	if _, err := server.CheckBarcode(req); err != nil {
		return err
	}
	_, err = e.server.Run("barcode", req.Type+" "+data, func(p *printer.Printer) error {
		return server.PrintBarcode(p, req)
	})
	return err
}

func printImage(e *env) error {
	path, err := e.arg("image file")
	if err != nil {
		return err
	}
	if err := server.CheckFeed(e.options.Feed); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("Couldn't open image:\n%w", err)
	}
	defer f.Close()

	img, _, err := bitmap.Decode(f)
	if err != nil {
		return err
	}
	_, err = e.server.Run("image", path, func(p *printer.Printer) error {
		if err := p.PrintImage(img, e.options.LineAtATime); err != nil {
			return err
		}
		if e.options.Feed > 0 {
			return p.Feed(e.options.Feed)
		}
		return nil
	})
	return err
}

func printBanner(e *env) error {
	text, err := e.arg("banner text")
	if err != nil {
		return err
	}
	if err := server.CheckFeed(e.options.Feed); err != nil {
		return err
	}
	packed, err := server.RenderBanner(model.BannerRequest{Text: text, Font: e.options.Font, Size: e.options.FontSize})
	if err != nil {
		return err
	}
	_, err = e.server.Run("banner", text, func(p *printer.Printer) error {
		return server.PrintPacked(p, packed, e.options.Feed)
	})
	return err
}

func paper(e *env) error {
	var hasPaper bool
	err := e.server.Printer.Do(func(p *printer.Printer) error {
		var err error
		hasPaper, err = p.HasPaper()
		return err
	})
	if err != nil {
		return err
	}
	if hasPaper {
		fmt.Println("Paper present")
	} else {
		fmt.Println("Out of paper")
	}
	return nil
}

func testPage(e *env) error {
	_, err := e.server.Run("testpage", "", func(p *printer.Printer) error {
		return p.TestPage()
	})
	return err
}

// tour prints a sample of each text style, a barcode, a banner and a ruler
// across the full head width
func tour(e *env) error {
	banner, err := server.RenderBanner(model.BannerRequest{Text: "ttlprint", Font: "gobold", Size: 64})
	if err != nil {
		return err
	}
	ruler, err := bitmap.Ruler(printer.MaxWidth, 24)
	if err != nil {
		return err
	}

	_, err = e.server.Run("tour", "", func(p *printer.Printer) error {
		steps := []func() error{
			func() error { return p.Println("Hello World!") },

			func() error { return p.Inverse(true) },
			func() error { return p.Println("Inverse ON") },
			func() error { return p.Inverse(false) },

			func() error { return p.UpsideDown(true) },
			func() error { return p.Println("Upside down ON") },
			func() error { return p.UpsideDown(false) },

			func() error { return p.DoubleHeight(true) },
			func() error { return p.Println("Double Height ON") },
			func() error { return p.DoubleHeight(false) },

			func() error { return p.Justify(printer.Right) },
			func() error { return p.Println("Right justified") },
			func() error { return p.Justify(printer.Centre) },
			func() error { return p.Println("Center justified") },
			func() error { return p.Justify(printer.Left) },
			func() error { return p.Println("Left justified") },

			func() error { return p.Bold(true) },
			func() error { return p.Println("Bold text") },
			func() error { return p.Bold(false) },

			func() error { return p.Underline(printer.ThinUnderline) },
			func() error { return p.Println("Underlined text") },
			func() error { return p.Underline(printer.NoUnderline) },

			func() error { return p.SetSize(printer.Large) },
			func() error { return p.Println("Large") },
			func() error { return p.SetSize(printer.Medium) },
			func() error { return p.Println("Medium") },
			func() error { return p.SetSize(printer.Small) },
			func() error { return p.Println("Small") },

			func() error { return p.Justify(printer.Centre) },
			func() error { return p.Println("Code 128") },
			func() error { return p.PrintBarcode("ADAFRUT", printer.Code128) },
			func() error { return p.Justify(printer.Left) },

			func() error { return server.PrintPacked(p, banner, 0) },
			func() error { return p.PrintPacked(ruler, false) },

			func() error { return p.Println("Word wrapping keeps long lines from breaking in the middle of a word") },
			func() error { return p.PrintlnWrapped("Word wrapping keeps long lines from breaking in the middle of a word") },

			func() error { return p.Feed(4) },
			p.SetDefault,
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// calibrate prints a solid bar at each heat time so the darkest setting
// that doesn't smudge can be picked
func calibrate(e *env) error {
	_, err := e.server.Run("calibrate", "", func(p *printer.Printer) error {
		bar := strings.Repeat(" ", p.State().MaxColumn)
		for heat := 0; heat <= 255; heat += 15 {
			if err := p.SetHeatTime(byte(heat)); err != nil {
				return err
			}
			if err := p.Println(fmt.Sprintf("Heat time %d", heat)); err != nil {
				return err
			}
			if err := p.Inverse(true); err != nil {
				return err
			}
			if err := p.Println(bar); err != nil {
				return err
			}
			if err := p.Inverse(false); err != nil {
				return err
			}
		}
		if err := p.SetHeatTime(byte(e.cfg.HeatTime)); err != nil {
			return err
		}
		return p.Feed(4)
	})
	return err
}
