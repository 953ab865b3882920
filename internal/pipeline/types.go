// Package pipeline describes the progress of checking a set of scripts:
// which stage each file is in and how it finished.
package pipeline

import "time"

// Stage describes a phase of checking one script.
type Stage string

const (
	StageLoad  Stage = "load"
	StageLex   Stage = "lex"
	StageParse Stage = "parse"
	StageSema  Stage = "sema"
	StageLower Stage = "lower"
	// StageCheck runs the ownership evaluator over every function.
	StageCheck Stage = "check"
	// StageCache marks a result served from the disk cache.
	StageCache Stage = "cache"
)

// Stages lists the stages in pipeline order.
var Stages = []Stage{StageLoad, StageLex, StageParse, StageSema, StageLower, StageCheck}

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	// StatusDone means the file was checked and produced no errors.
	StatusDone Status = "done"
	// StatusFailed means the file produced error diagnostics.
	StatusFailed Status = "failed"
	// StatusError means the file could not be checked at all.
	StatusError Status = "error"
)

// Finished reports whether no further events follow for the file.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusFailed || s == StatusError
}

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: files are checked in parallel.
type ProgressSink interface {
	OnEvent(Event)
}

// Fraction estimates how far along a file is once it reached stage.
func Fraction(stage Stage, status Status) float64 {
	if status.Finished() {
		return 1
	}
	if stage == StageCache {
		return 0.9
	}
	for i, s := range Stages {
		if s == stage {
			return float64(i) / float64(len(Stages))
		}
	}
	return 0
}
