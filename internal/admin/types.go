package admin

import "time"

// MetricsParams holds query parameters for metrics endpoints
type MetricsParams struct {
	StartDate time.Time
	EndDate   time.Time
	Interval  string // hour, day, week, month
	Limit     int
	Offset    int
}

// MetricsResponse is the standard response wrapper for metrics endpoints
type MetricsResponse struct {
	Data       interface{}     `json:"data"`
	Meta       ResponseMeta    `json:"meta"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

type ResponseMeta struct {
	Period      Period    `json:"period"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type PaginationMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// VerificationMetrics summarizes decided verification attempts
type VerificationMetrics struct {
	Total     int64                  `json:"total"`
	Matched   int64                  `json:"matched"`
	MatchRate float64                `json:"match_rate"`
	ByMethod  map[string]int64       `json:"by_method"`
	Timeline  []VerificationTimeline `json:"timeline"`
}

type VerificationTimeline struct {
	Period  string `json:"period"`
	Total   int64  `json:"total"`
	Matched int64  `json:"matched"`
	Failed  int64  `json:"failed"`
}

// LatencyMetrics contains end-to-end decision latency percentiles
type LatencyMetrics struct {
	AverageMs float64 `json:"average_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}
