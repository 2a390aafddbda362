// Package model holds the JSON bodies of the HTTP API
package model

import (
	"time"

	"tomgalvin.uk/ttlprint/internal/journal"
	"tomgalvin.uk/ttlprint/internal/printer"
)

// TextRequest prints text with optional one-off formatting. Formatting is
// reset to the defaults after the text is printed.
type TextRequest struct {
	Text string `json:"text"`
	// "S", "M" or "L"
	Size string `json:"size,omitempty"`
	// "L", "C" or "R"
	Justify      string `json:"justify,omitempty"`
	Underline    int    `json:"underline,omitempty"`
	Bold         bool   `json:"bold,omitempty"`
	Inverse      bool   `json:"inverse,omitempty"`
	UpsideDown   bool   `json:"upsideDown,omitempty"`
	DoubleHeight bool   `json:"doubleHeight,omitempty"`
	DoubleWidth  bool   `json:"doubleWidth,omitempty"`
	Strike       bool   `json:"strike,omitempty"`
	SmallFont    bool   `json:"smallFont,omitempty"`
	Sideways     bool   `json:"sideways,omitempty"`
	Wrap         bool   `json:"wrap,omitempty"`
	Feed         int    `json:"feed,omitempty"`
}

type BarcodeRequest struct {
	Data string `json:"data"`
	// Symbology name, e.g. "CODE128" or "UPC_A"
	Type   string `json:"type"`
	Height int    `json:"height,omitempty"`
	Feed   int    `json:"feed,omitempty"`
}

type BannerRequest struct {
	Text string `json:"text"`
	Font string `json:"font,omitempty"`
	Size int    `json:"size,omitempty"`
	Feed int    `json:"feed,omitempty"`
}

type FeedRequest struct {
	Lines int `json:"lines,omitempty"`
	Rows  int `json:"rows,omitempty"`
}

type PaperResponse struct {
	HasPaper bool `json:"hasPaper"`
}

type InfoResponse struct {
	Firmware      string    `json:"firmware"`
	Column        int       `json:"column"`
	MaxColumn     int       `json:"maxColumn"`
	CharHeight    int       `json:"charHeight"`
	LineSpacing   int       `json:"lineSpacing"`
	PrintMode     string    `json:"printMode"`
	Sideways      bool      `json:"sideways"`
	BarcodeHeight int       `json:"barcodeHeight"`
	BytesSent     int64     `json:"bytesSent"`
	ResumeAt      time.Time `json:"resumeAt"`
}

func FromState(s printer.State, stats printer.Stats) InfoResponse {
	return InfoResponse{
		Firmware:      s.Firmware.String(),
		Column:        s.Column,
		MaxColumn:     s.MaxColumn,
		CharHeight:    s.CharHeight,
		LineSpacing:   s.LineSpacing,
		PrintMode:     s.PrintMode.String(),
		Sideways:      s.Sideways,
		BarcodeHeight: s.BarcodeHeight,
		BytesSent:     stats.BytesSent,
		ResumeAt:      stats.ResumeAt,
	}
}

type JobResponse struct {
	Uuid       string    `json:"uuid"`
	Kind       string    `json:"kind"`
	Summary    string    `json:"summary"`
	BytesSent  int64     `json:"bytesSent"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Error      string    `json:"error,omitempty"`
}

func FromJob(j journal.Job) JobResponse {
	return JobResponse{
		Uuid:       j.Uuid.String(),
		Kind:       j.Kind,
		Summary:    j.Summary,
		BytesSent:  j.BytesSent,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		Error:      j.Error,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
