package search

import (
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/openai/openai-go"

	"github.com/liliang-cn/qualia/internal/domain"
)

const (
	reasonBadRequest = "Bad request: The API request format is incorrect."
	reasonAuth       = "Invalid API key. Please check your Perplexity API key."
	reasonRateLimit  = "Rate limit exceeded. Please try again later."
	reasonServer     = "Perplexity API server error. Please try again later."
	reasonNetwork    = "Network error: the Perplexity API could not be reached."
	reasonUnknown    = "An unknown error occurred"
)

// Classify maps a completion call error to a failure kind and the reason
// shown to the user.
func Classify(err error) domain.Failure {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return domain.Failure{Kind: domain.FailureNetwork, Reason: reasonNetwork}
	}
	if err != nil {
		return domain.Failure{Kind: domain.FailureUnknown, Reason: err.Error()}
	}
	return domain.Failure{Kind: domain.FailureUnknown, Reason: reasonUnknown}
}

func classifyStatus(status int) domain.Failure {
	f := domain.Failure{StatusCode: status}
	switch {
	case status == http.StatusBadRequest:
		f.Kind, f.Reason = domain.FailureBadRequest, reasonBadRequest
	case status == http.StatusUnauthorized:
		f.Kind, f.Reason = domain.FailureAuth, reasonAuth
	case status == http.StatusTooManyRequests:
		f.Kind, f.Reason = domain.FailureRateLimit, reasonRateLimit
	case status >= http.StatusInternalServerError:
		f.Kind, f.Reason = domain.FailureServer, reasonServer
	default:
		f.Kind, f.Reason = domain.FailureUnknown, reasonUnknown
	}
	return f
}
