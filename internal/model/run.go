package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusSearching RunStatus = "searching"
	RunStatusPricing   RunStatus = "pricing"
	RunStatusReviewing RunStatus = "reviewing"
	RunStatusScoring   RunStatus = "scoring"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
)

// StageStatus represents the state of a single pipeline stage.
type StageStatus string

const (
	StageStatusRunning  StageStatus = "running"
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
	StageStatusSkipped  StageStatus = "skipped"
)

// Stage names, in execution order.
const (
	StageSearch = "search"
	StagePrice  = "price"
	StageReview = "review"
	StageScore  = "score"
)

// StageResult holds the outcome of one pipeline stage. Raw results are
// preserved regardless of pipeline-level outcome, for diagnostics.
type StageResult struct {
	Name     string         `json:"name"`
	Status   StageStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PipelineQuery is the full input to a recommendation run.
type PipelineQuery struct {
	SearchTerm     string        `json:"search_term"`
	MaxResults     int           `json:"max_results,omitempty"`
	Sources        []string      `json:"sources,omitempty"`
	Filters        SearchFilters `json:"filters,omitempty"`
	Preferences    Preferences   `json:"preferences,omitempty"`
	IncludePrices  bool          `json:"include_prices"`
	IncludeReviews bool          `json:"include_reviews"`
}

// PipelineResult is the structured outcome of a run. Every entry point
// returns one of these with an explicit Success flag; errors never
// propagate past the pipeline boundary.
type PipelineResult struct {
	Success         bool                   `json:"success"`
	RunID           string                 `json:"run_id,omitempty"`
	Stages          map[string]StageResult `json:"stages"`
	Recommendations []Recommendation       `json:"recommendations"`
	Summary         Summary                `json:"summary"`
	Error           string                 `json:"error,omitempty"`
}

// Run is a persisted pipeline run record.
type Run struct {
	ID        string        `json:"id"`
	Query     PipelineQuery `json:"query"`
	Status    RunStatus     `json:"status"`
	Result    *RunResult    `json:"result,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// RunResult is the persisted outcome of a run.
type RunResult struct {
	Success         bool             `json:"success"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         Summary          `json:"summary"`
	Stages          []StageResult    `json:"stages"`
	Error           string           `json:"error,omitempty"`
}
