package driver

import (
	"borrowck/internal/observ"
)

// TimingPayload is the machine-readable form of --timings.
type TimingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// NewTimingPayload reports a file ("file") or a whole run ("suite").
func NewTimingPayload(kind, path string, timer *observ.Timer) TimingPayload {
	if kind == "" {
		kind = "file"
	}
	report := observ.Report{}
	if timer != nil {
		report = timer.Report()
	}
	return TimingPayload{Kind: kind, Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
}
