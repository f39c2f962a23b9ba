package metrics

import "time"

// TickDecision enumerates throttle outcomes for counters.
type TickDecision string

const (
	TickProcessed TickDecision = "processed"
	TickSkipped   TickDecision = "skipped"
)

// Recorder defines observability hooks for the inspection pipeline. NoopRecorder is
// used when metrics are not configured.
type Recorder interface {
	IncTick(decision TickDecision)
	IncDetection(class string)
	IncRecognition()
	IncSerialRecorded()
	IncReconciliation(outcome string)
	AddPanelsMarked(n int)
	ObserveStageDuration(stage string, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncTick(TickDecision)                       {}
func (NoopRecorder) IncDetection(string)                        {}
func (NoopRecorder) IncRecognition()                            {}
func (NoopRecorder) IncSerialRecorded()                         {}
func (NoopRecorder) IncReconciliation(string)                   {}
func (NoopRecorder) AddPanelsMarked(int)                        {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
