package fetcher

import (
	"time"

	"resty.dev/v3"

	"financehub/internal/logger"
)

const (
	// Default retry configuration
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 10 * time.Second
)

// ClientOptions tune the HTTP client used by a source. Exchange timeouts are
// applied per request by the transport.
type ClientOptions struct {
	// RetryCount is the number of transport-level retries. Zero disables
	// retries, so every source is attempted exactly once.
	RetryCount int
	// RetryWaitTime is the initial backoff between retries.
	RetryWaitTime time.Duration
}

// NewHTTPClient creates a new HTTP client with optional retry logic and exponential backoff
func NewHTTPClient(baseURL string, opts ClientOptions) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetLogger(logger.Component("resty"))

	if opts.RetryCount > 0 {
		wait := opts.RetryWaitTime
		if wait <= 0 {
			wait = defaultRetryWaitTime
		}

		client.
			SetRetryCount(opts.RetryCount).
			SetRetryWaitTime(wait).
			SetRetryMaxWaitTime(defaultRetryMaxWaitTime).
			AddRetryConditions(retryCondition).
			AddRetryHooks(retryHook)
	}

	return client
}

// retryCondition determines whether a request should be retried based on the response and error
func retryCondition(r *resty.Response, err error) bool {
	// Retry on network errors
	if err != nil {
		return true
	}

	switch code := r.StatusCode(); {
	case code >= 500:
		return true
	case code == 429, code == 408:
		return true
	default:
		return false
	}
}

// retryHook logs retry attempts for observability
func retryHook(r *resty.Response, err error) {
	if r == nil || r.Request == nil {
		logger.Debug().Err(err).Msg("retrying request")
		return
	}

	if err != nil {
		logger.Debug().
			Str("url", r.Request.URL).
			Int("attempt", r.Request.Attempt).
			Err(err).
			Msg("retrying request due to error")
		return
	}

	logger.Debug().
		Str("url", r.Request.URL).
		Int("attempt", r.Request.Attempt).
		Int("status_code", r.StatusCode()).
		Msg("retrying request due to status code")
}
