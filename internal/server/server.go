// Package server exposes a printer over HTTP. Every request is one job: it
// gets the printer to itself for its duration and is written to the
// journal when it finishes.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tomgalvin.uk/ttlprint/internal/bitmap"
	"tomgalvin.uk/ttlprint/internal/journal"
	"tomgalvin.uk/ttlprint/internal/model"
	"tomgalvin.uk/ttlprint/internal/printer"
)

const (
	maxBodySize     = 16 << 20
	defaultJobLimit = 50
)

type Server struct {
	Printer *printer.Locked
	// Jobs aren't recorded when nil
	Journal *journal.Journal
	Logger  *slog.Logger
	// Time source for job timestamps, time.Now when nil
	Now func() time.Time
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/text", s.handleText)
	mux.HandleFunc("POST /api/barcode", s.handleBarcode)
	mux.HandleFunc("POST /api/image", s.handleImage)
	mux.HandleFunc("POST /api/banner", s.handleBanner)
	mux.HandleFunc("POST /api/feed", s.handleFeed)
	mux.HandleFunc("GET /api/paper", s.handlePaper)
	mux.HandleFunc("GET /api/jobs", s.handleJobs)
	mux.HandleFunc("GET /api/jobs/{uuid}", s.handleJob)
	mux.HandleFunc("GET /api/info", s.handleInfo)
	return mux
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Run does one job with the printer locked and records the outcome
func (s *Server) Run(kind, summary string, f func(p *printer.Printer) error) (journal.Job, error) {
	job := journal.Job{Kind: kind, Summary: summary, StartedAt: s.now()}

	err := s.Printer.Do(func(p *printer.Printer) error {
		before := p.Stats().BytesSent
		err := f(p)
		job.BytesSent = p.Stats().BytesSent - before
		return err
	})
	job.FinishedAt = s.now()
	if err != nil {
		job.Error = err.Error()
		s.logger().Error("Print job failed", "kind", kind, "error", err)
	} else {
		s.logger().Info("Print job done", "kind", kind, "bytes", job.BytesSent, "duration", job.Duration())
	}

	if s.Journal != nil {
		recorded, jerr := s.Journal.Record(job)
		if jerr != nil {
			s.logger().Error("Couldn't record job", "kind", kind, "error", jerr)
		} else {
			job = recorded
		}
	}
	return job, err
}

func (s *Server) respondJob(w http.ResponseWriter, job journal.Job, err error) {
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, model.FromJob(job))
}

// Bad arguments are the caller's fault, anything else is the printer's
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusServiceUnavailable
	if errors.Is(err, printer.ErrInvalidArgument) || errors.Is(err, printer.ErrUnsupported) {
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Error("Couldn't write response", "error", err)
	}
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return false
	}
	return true
}

func summarise(s string) string {
	const maxSummary = 64
	r := []rune(s)
	if len(r) > maxSummary {
		return string(r[:maxSummary]) + "..."
	}
	return s
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req model.TextRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	job, err := s.Run("text", summarise(req.Text), func(p *printer.Printer) error {
		return PrintText(p, req)
	})
	s.respondJob(w, job, err)
}

func (s *Server) handleBarcode(w http.ResponseWriter, r *http.Request) {
	var req model.BarcodeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if _, err := CheckBarcode(req); err != nil {
		s.respondError(w, err)
		return
	}
	job, err := s.Run("barcode", req.Type+" "+summarise(req.Data), func(p *printer.Printer) error {
		return PrintBarcode(p, req)
	})
	s.respondJob(w, job, err)
}

// handleImage takes the raw image file as the body
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	img, format, err := bitmap.Decode(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	feed, err := queryInt(r, "feed")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	if err := CheckFeed(feed); err != nil {
		s.respondError(w, err)
		return
	}

	packed, err := RenderImage(img)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	summary := fmt.Sprintf("%s %dx%d", format, packed.Width(), packed.Height())
	job, err := s.Run("image", summary, func(p *printer.Printer) error {
		return PrintPacked(p, packed, feed)
	})
	s.respondJob(w, job, err)
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	var req model.BannerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := CheckFeed(req.Feed); err != nil {
		s.respondError(w, err)
		return
	}
	packed, err := RenderBanner(req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	job, err := s.Run("banner", summarise(req.Text), func(p *printer.Printer) error {
		return PrintPacked(p, packed, req.Feed)
	})
	s.respondJob(w, job, err)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	var req model.FeedRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := CheckFeed(req.Lines); err != nil {
		s.respondError(w, err)
		return
	}
	if req.Rows < 0 || req.Rows > 255 {
		s.respondError(w, &printer.ArgumentError{Op: "feed rows", Value: req.Rows, Want: "0-255 rows"})
		return
	}
	summary := fmt.Sprintf("%d lines %d rows", req.Lines, req.Rows)
	job, err := s.Run("feed", summary, func(p *printer.Printer) error {
		if req.Lines > 0 {
			if err := p.Feed(req.Lines); err != nil {
				return err
			}
		}
		if req.Rows > 0 {
			return p.FeedRows(req.Rows)
		}
		return nil
	})
	s.respondJob(w, job, err)
}

func (s *Server) handlePaper(w http.ResponseWriter, r *http.Request) {
	var hasPaper bool
	err := s.Printer.Do(func(p *printer.Printer) error {
		var err error
		hasPaper, err = p.HasPaper()
		return err
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, model.PaperResponse{HasPaper: hasPaper})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		s.writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "No journal configured"})
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	if limit <= 0 {
		limit = defaultJobLimit
	}

	jobs, err := s.Journal.List(limit)
	if err != nil {
		s.logger().Error("Couldn't list jobs", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Couldn't list jobs"})
		return
	}
	resp := make([]model.JobResponse, len(jobs))
	for i, j := range jobs {
		resp[i] = model.FromJob(j)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		s.writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "No journal configured"})
		return
	}
	u, err := uuid.Parse(r.PathValue("uuid"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: fmt.Sprintf("Invalid job id %q", r.PathValue("uuid"))})
		return
	}

	job, err := s.Journal.Get(u)
	if err != nil {
		s.logger().Error("Couldn't read job", "uuid", u, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Couldn't read job"})
		return
	}
	if job == nil {
		s.writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "No such job"})
		return
	}
	s.writeJSON(w, http.StatusOK, model.FromJob(*job))
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, model.FromState(s.Printer.Snapshot()))
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("Query parameter %s must be a number, got %q", name, v)
	}
	return n, nil
}
