// Package models defines the moderation vocabulary: candidates awaiting an
// admissibility decision and the verdicts produced for them.
package models

// Decision is the terminal outcome of scoring one candidate.
type Decision string

const (
	// DecisionAccepted means the scorer produced a score at or above the
	// admission threshold.
	DecisionAccepted Decision = "accepted"

	// DecisionRejected means the scorer legitimately scored the image
	// below the threshold.
	DecisionRejected Decision = "rejected"

	// DecisionFailed means the scorer could not produce a usable score.
	// Callers treat Failed like Rejected (the image is discarded), but the
	// verdict carries a diagnostic message.
	DecisionFailed Decision = "failed"
)

// Candidate is a single uploaded file awaiting moderation. The candidate's
// backing file is owned by the orchestrator for the duration of the verdict.
type Candidate struct {
	Path         string
	OriginalName string
	SizeBytes    int64
}

// Verdict records the outcome of scoring one candidate. Immutable after
// creation. Score is nil when the scorer produced no usable number.
type Verdict struct {
	Candidate Candidate
	Score     *float64
	Decision  Decision
	Message   string
}

// BatchResult is the outcome of moderating a batch. Accepted preserves the
// relative order of the input; Verdicts covers every candidate for
// observability.
type BatchResult struct {
	Accepted []Candidate
	Verdicts []Verdict
}
