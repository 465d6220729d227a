package exchange

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"resty.dev/v3"

	"financehub/internal/fetcher"
	"financehub/internal/logger"
	"financehub/internal/ratelimit"
)

const defaultChunkSize = 512

// RestyTransport performs exchanges with a resty client, streaming the raw
// response body to the handler in chunks.
type RestyTransport struct {
	client    *resty.Client
	limiter   *ratelimit.Limiter
	api       ratelimit.API
	timeout   time.Duration
	chunkSize int
	observer  Observer
}

// Observer is told about every exchange a transport performs. statusCode is
// zero when no response was received.
type Observer interface {
	ObserveExchange(api string, statusCode int, elapsed time.Duration, bytes int)
}

// Option configures a RestyTransport.
type Option func(*RestyTransport)

// WithRateLimit makes every exchange wait for the API's limiter first.
func WithRateLimit(l *ratelimit.Limiter, api ratelimit.API) Option {
	return func(t *RestyTransport) {
		t.limiter = l
		t.api = api
	}
}

// WithTimeout bounds each exchange, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(t *RestyTransport) {
		t.timeout = d
	}
}

// WithChunkSize sets the largest chunk handed to OnChunk.
func WithChunkSize(n int) Option {
	return func(t *RestyTransport) {
		if n > 0 {
			t.chunkSize = n
		}
	}
}

// WithObserver reports every exchange to o, labelled with the API given to
// WithRateLimit.
func WithObserver(o Observer) Option {
	return func(t *RestyTransport) {
		t.observer = o
	}
}

// NewRestyTransport wraps client as a Transport.
func NewRestyTransport(client *resty.Client, opts ...Option) *RestyTransport {
	t := &RestyTransport{
		client:    client,
		chunkSize: defaultChunkSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Perform executes req and feeds the handler until a terminal event.
func (t *RestyTransport) Perform(ctx context.Context, req Request, h Handler) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx, t.api); err != nil {
			h.OnError(waitError(ctx, err))
			return
		}
	}

	r := t.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if req.AuthToken != "" {
		r.SetAuthToken(req.AuthToken)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var (
		start    = time.Now()
		status   int
		received int
	)
	if t.observer != nil {
		defer func() {
			t.observer.ObserveExchange(string(t.api), status, time.Since(start), received)
		}()
	}

	resp, err := r.Execute(method, req.URL)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		h.OnError(err)
		return
	}
	status = resp.StatusCode()

	if resp.Body != nil {
		defer resp.Body.Close()
		var ok bool
		received, ok = t.stream(resp.Body, h)
		if !ok {
			return
		}
	}

	logger.Debug().
		Str("method", method).
		Str("url", req.URL).
		Int("status_code", status).
		Int("bytes", received).
		Dur("elapsed", time.Since(start)).
		Msg("exchange finished")
	h.OnFinish(status)
}

// waitError classifies a failed limiter wait. A done context, or a deadline
// that would pass before a token is available, is a timeout or cancellation
// of the exchange; only a wait the limiter itself refuses is a rate limit.
func waitError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fetcher.ClassifyTransportError(ctxErr)
	}
	if _, ok := ctx.Deadline(); ok {
		return fetcher.NewTimeoutError(err)
	}
	limited := fetcher.NewRateLimitError(0)
	limited.Cause = err
	return limited
}

// stream copies body to the handler and returns the bytes delivered. ok is
// false if a terminal event was already delivered or the handler refused a
// chunk.
func (t *RestyTransport) stream(body io.Reader, h Handler) (total int, ok bool) {
	chunk := make([]byte, t.chunkSize)
	for {
		n, err := body.Read(chunk)
		if n > 0 {
			if herr := h.OnChunk(chunk[:n]); herr != nil {
				return total, false
			}
			total += n
		}
		if errors.Is(err, io.EOF) {
			return total, true
		}
		if err != nil {
			h.OnError(err)
			return total, false
		}
	}
}
