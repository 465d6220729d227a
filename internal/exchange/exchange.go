// Package exchange drives one HTTP request/response interaction from the
// transport's chunk/finish/error callbacks to a parsed document.
package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"financehub/internal/buffer"
	"financehub/internal/fetcher"
	"financehub/internal/jsondoc"
)

// State is the lifecycle position of an Exchange.
type State int

const (
	StateIdle State = iota
	StateAccumulating
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNoTerminalEvent is recorded when a transport returns without signalling
// either finish or error.
var ErrNoTerminalEvent = errors.New("transport returned without finishing the exchange")

// Request describes one exchange.
type Request struct {
	Method    string
	URL       string
	Headers   map[string]string
	AuthToken string
	Body      any
}

// Handler receives the events of one exchange. OnChunk is called zero or more
// times in arrival order, followed by exactly one of OnFinish or OnError. If
// OnChunk returns an error the transport must stop delivering events.
type Handler interface {
	OnChunk(chunk []byte) error
	OnFinish(statusCode int)
	OnError(err error)
}

// Transport performs exchanges. Perform blocks until the handler has received
// its terminal event.
type Transport interface {
	Perform(ctx context.Context, req Request, h Handler)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req Request, h Handler)

// Perform calls f(ctx, req, h).
func (f TransportFunc) Perform(ctx context.Context, req Request, h Handler) {
	f(ctx, req, h)
}

// Exchange is the per-exchange context handed to a transport. It owns the
// accumulator for the duration of the exchange.
type Exchange struct {
	id         string
	acc        buffer.Accumulator
	state      State
	statusCode int
	err        error
}

// New starts an exchange that accumulates into acc. The accumulator must not
// be shared with another exchange until Result has been called.
func New(acc buffer.Accumulator) *Exchange {
	return &Exchange{
		id:  uuid.NewString(),
		acc: acc,
	}
}

// ID returns the identifier used to correlate log lines of one exchange.
func (e *Exchange) ID() string { return e.id }

// State returns the current state.
func (e *Exchange) State() State { return e.state }

// StatusCode returns the HTTP status reported at finish, or zero.
func (e *Exchange) StatusCode() int { return e.statusCode }

// Received returns the number of body bytes accumulated so far.
func (e *Exchange) Received() int { return e.acc.Len() }

// OnChunk appends a body chunk. A chunk arriving after a terminal event is
// rejected; a buffer failure moves the exchange to Failed.
func (e *Exchange) OnChunk(chunk []byte) error {
	switch e.state {
	case StateIdle, StateAccumulating:
	default:
		return fmt.Errorf("chunk received in %s exchange", e.state)
	}

	if err := e.acc.Append(chunk); err != nil {
		e.fail(fetcher.NewBufferError(err))
		return e.err
	}
	e.state = StateAccumulating
	return nil
}

// OnFinish marks the transfer complete.
func (e *Exchange) OnFinish(statusCode int) {
	switch e.state {
	case StateIdle, StateAccumulating:
		e.statusCode = statusCode
		e.state = StateFinished
	}
}

// OnError marks the exchange failed. Only the first terminal event counts.
func (e *Exchange) OnError(err error) {
	switch e.state {
	case StateIdle, StateAccumulating:
		e.fail(fetcher.ClassifyTransportError(err))
	}
}

func (e *Exchange) fail(err error) {
	e.err = err
	e.state = StateFailed
}

// Result turns a terminated exchange into a document. A failed exchange
// returns its recorded error; a finished one with a non-2xx status returns a
// transport error quoting the start of the body; otherwise the body is
// finalized. The accumulator is reset on every path.
func (e *Exchange) Result() (jsondoc.Value, error) {
	switch e.state {
	case StateIdle, StateAccumulating:
		e.fail(fetcher.NewNetworkError(ErrNoTerminalEvent))
	}

	if e.state == StateFailed {
		e.acc.Reset()
		return jsondoc.Value{}, e.err
	}

	if e.statusCode < 200 || e.statusCode > 299 {
		err := fetcher.ClassifyHTTPResponse(e.statusCode, e.acc.Bytes())
		e.acc.Reset()
		return jsondoc.Value{}, err
	}

	return Finalize(e.acc)
}

// Do performs req over t, accumulating into acc, and returns the parsed
// document. It returns only after the exchange reached a terminal state.
func Do(ctx context.Context, t Transport, req Request, acc buffer.Accumulator) (jsondoc.Value, *Exchange, error) {
	ex := New(acc)
	t.Perform(ctx, req, ex)
	doc, err := ex.Result()
	return doc, ex, err
}
