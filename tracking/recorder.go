// Package tracking is the write-only observation side channel for inference
// calls. Recording is best-effort: a failure here is logged and discarded at
// this boundary and never reaches the caller.
package tracking

// InferenceRecord is one observed inference. There is no read path; records
// are consumed solely by the external analytics sink.
type InferenceRecord struct {
	TenantID       string
	UserID         string
	Provider       string
	Model          string
	PromptLength   int
	ResponseLength int
	LatencyMS      float64
	TokensIn       float64
	TokensOut      float64
	Environment    string
	Streamed       bool
	Cancelled      bool
}

// Recorder accepts inference records. Implementations must never block the
// caller and must never panic through this interface.
type Recorder interface {
	Record(rec InferenceRecord)
	Close() error
}

// NopRecorder discards every record. Used when no tracking sink is configured.
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func (NopRecorder) Record(InferenceRecord) {}
func (NopRecorder) Close() error           { return nil }
