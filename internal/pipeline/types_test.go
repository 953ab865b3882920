package pipeline

import "testing"

func TestFraction(t *testing.T) {
	tests := []struct {
		stage  Stage
		status Status
		want   float64
	}{
		{StageLoad, StatusWorking, 0},
		{StageSema, StatusWorking, 0.5},
		{StageCheck, StatusWorking, 5.0 / 6.0},
		{StageCache, StatusWorking, 0.9},
		{StageLex, StatusFailed, 1},
		{StageLex, StatusError, 1},
		{"unknown", StatusQueued, 0},
	}
	for _, tt := range tests {
		if got := Fraction(tt.stage, tt.status); got != tt.want {
			t.Errorf("Fraction(%s, %s) = %v, want %v", tt.stage, tt.status, got, tt.want)
		}
	}
}

func TestRecorderFinal(t *testing.T) {
	var rec Recorder
	var sink ProgressSink = &rec
	sink.OnEvent(Event{File: "a.own", Stage: StageLex, Status: StatusWorking})
	sink.OnEvent(Event{Stage: StageCheck, Status: StatusWorking})
	sink.OnEvent(Event{File: "a.own", Stage: StageCheck, Status: StatusFailed})
	final := rec.Final()
	if len(final) != 1 || final["a.own"] != StatusFailed {
		t.Fatalf("final = %v", final)
	}
	if len(rec.Events()) != 3 {
		t.Fatalf("events = %d", len(rec.Events()))
	}
}
