package domain

import "time"

// MoodSketch is one generated result. Records are immutable once created;
// the JSON keys match the persisted gallery format.
type MoodSketch struct {
	ID            string   `json:"id"`
	OriginalMood  string   `json:"originalMood"`
	RefinedPrompt string   `json:"refinedPrompt"`
	ImageURL      string   `json:"imageUrl"`
	Colors        []string `json:"colors"`
	Style         string   `json:"style"`
	Timestamp     int64    `json:"timestamp"`
}

// CreatedAt converts the millisecond timestamp back into a time.Time.
func (s MoodSketch) CreatedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Clone returns a copy that does not share the colors slice.
func (s MoodSketch) Clone() MoodSketch {
	out := s
	out.Colors = append([]string(nil), s.Colors...)
	return out
}

// PipelineState enumerates the generation pipeline states.
type PipelineState string

const (
	StateIdle       PipelineState = "idle"
	StateRefining   PipelineState = "refining"
	StateGenerating PipelineState = "generating"
	StateSucceeded  PipelineState = "succeeded"
	StateFailed     PipelineState = "failed"
)

// GenerationStatus is the transient view of the pipeline. Only Count is
// durable, and it is owned by the gallery store.
type GenerationStatus struct {
	State     PipelineState `json:"state"`
	Loading   bool          `json:"loading"`
	Error     string        `json:"error,omitempty"`
	Count     int           `json:"count"`
	Limit     int           `json:"limit"`
	Remaining int           `json:"remaining"`
}
