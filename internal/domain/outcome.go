package domain

// Source tells where a search answer came from
type Source string

const (
	SourceLive                Source = "live"
	SourceMockNoCredential    Source = "mock_no_credential"
	SourceMockEmptyAnswer     Source = "mock_empty_answer"
	SourceMockUpstreamFailure Source = "mock_upstream_failure"
)

// FailureKind classifies an upstream failure of the completion call
type FailureKind string

const (
	FailureBadRequest FailureKind = "bad_request"
	FailureAuth       FailureKind = "auth"
	FailureRateLimit  FailureKind = "rate_limit"
	FailureServer     FailureKind = "server"
	FailureNetwork    FailureKind = "network"
	FailureUnknown    FailureKind = "unknown"
)

// Failure describes why the live completion could not be used
type Failure struct {
	Kind       FailureKind `json:"kind"`
	StatusCode int         `json:"status_code,omitempty"`
	Reason     string      `json:"reason"`
}

// Outcome records how a search response was produced
type Outcome struct {
	Source  Source   `json:"source"`
	Failure *Failure `json:"failure,omitempty"`
}

// Mocked reports whether the answer is the fallback payload
func (o Outcome) Mocked() bool {
	return o.Source != SourceLive
}
