package testutil

import (
	"context"
	"fmt"

	"financehub/internal/account"
	"financehub/internal/exchange"
	"financehub/internal/fetcher"
)

// MockFetcher is a mock implementation of the Fetcher interface for testing
type MockFetcher struct {
	FetchFunc       func(ctx context.Context) ([]account.Entry, error)
	KeyFunc         func() string
	InstitutionName string
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context) ([]account.Entry, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return nil, nil
}

// Key implements the Fetcher interface
func (m *MockFetcher) Key() string {
	if m.KeyFunc != nil {
		return m.KeyFunc()
	}
	return "mock:key"
}

// Institution implements the Fetcher interface
func (m *MockFetcher) Institution() string {
	return m.InstitutionName
}

// NewMockFetcher creates a simple mock fetcher with predefined entries
func NewMockFetcher(institution string, entries []account.Entry, err error) fetcher.Fetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context) ([]account.Entry, error) {
			return entries, err
		},
		KeyFunc: func() string {
			return fmt.Sprintf("mock:%s", institution)
		},
		InstitutionName: institution,
	}
}

// Step scripts one exchange of a ScriptedTransport.
type Step struct {
	// Chunks are delivered in order through OnChunk.
	Chunks []string
	// StatusCode is reported through OnFinish; zero means 200.
	StatusCode int
	// Err, when set, is delivered through OnError instead of finishing.
	Err error
}

// ScriptedTransport replays one Step per Perform call and records the
// requests it was given. Calls past the end of the script fail.
type ScriptedTransport struct {
	Steps    []Step
	Requests []exchange.Request
}

// NewScriptedTransport creates a transport that replays steps in order.
func NewScriptedTransport(steps ...Step) *ScriptedTransport {
	return &ScriptedTransport{Steps: steps}
}

// Perform implements exchange.Transport
func (s *ScriptedTransport) Perform(ctx context.Context, req exchange.Request, h exchange.Handler) {
	n := len(s.Requests)
	s.Requests = append(s.Requests, req)
	if n >= len(s.Steps) {
		h.OnError(fmt.Errorf("unscripted exchange %d", n+1))
		return
	}

	step := s.Steps[n]
	for _, c := range step.Chunks {
		if err := h.OnChunk([]byte(c)); err != nil {
			return
		}
	}
	if step.Err != nil {
		h.OnError(step.Err)
		return
	}

	status := step.StatusCode
	if status == 0 {
		status = 200
	}
	h.OnFinish(status)
}

// Split cuts s into pieces of at most size bytes, mimicking a transport that
// delivers a body in small chunks.
func Split(s string, size int) []string {
	var out []string
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
