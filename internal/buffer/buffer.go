// Package buffer accumulates HTTP response bodies that arrive in chunks.
//
// Both accumulators keep one byte past the current length reserved for a
// zero terminator, so a buffer holding n bytes always has capacity of at
// least n+1.
package buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow is returned by a fixed-capacity accumulator when a chunk
	// does not fit. The accumulator is left untouched.
	ErrOverflow = errors.New("response buffer overflow")

	// ErrOutOfMemory is returned by a growable accumulator when growing past
	// its memory budget. The accumulator is abandoned and emptied.
	ErrOutOfMemory = errors.New("response buffer out of memory")
)

// Accumulator collects the body chunks of a single exchange in arrival order.
type Accumulator interface {
	// Append copies chunk to the end of the buffer.
	Append(chunk []byte) error
	// Bytes returns the accumulated body. The slice is only valid until the
	// next Append or Reset.
	Bytes() []byte
	// Text returns the accumulated body as a string.
	Text() string
	// Len returns the number of accumulated bytes.
	Len() int
	// Cap returns the size of the backing storage.
	Cap() int
	// Reset empties the buffer so it can serve the next exchange.
	Reset()
}

// Growable is an Accumulator whose storage grows as chunks arrive, bounded by
// an optional memory budget.
type Growable struct {
	data  []byte
	n     int
	limit int
}

// NewGrowable creates a growable accumulator. A limit of zero or less means
// the buffer may grow without bound.
func NewGrowable(limit int) *Growable {
	return &Growable{limit: limit}
}

// Append grows the storage to hold len+len(chunk)+1 bytes and copies chunk.
// If that would exceed the budget the storage is released and ErrOutOfMemory
// is returned; the caller must treat the exchange as failed.
func (b *Growable) Append(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	need := b.n + len(chunk) + 1
	if b.limit > 0 && need > b.limit {
		b.release()
		return fmt.Errorf("%w: need %d bytes, budget is %d", ErrOutOfMemory, need, b.limit)
	}

	if need > len(b.data) {
		grown := make([]byte, growTo(len(b.data), need, b.limit))
		copy(grown, b.data[:b.n])
		b.data = grown
	}

	copy(b.data[b.n:], chunk)
	b.n += len(chunk)
	b.data[b.n] = 0
	return nil
}

// growTo doubles current until it reaches need, capped at limit.
func growTo(current, need, limit int) int {
	size := current
	if size == 0 {
		size = 64
	}
	for size < need {
		size *= 2
	}
	if limit > 0 && size > limit {
		size = limit
	}
	return size
}

func (b *Growable) release() {
	b.data = nil
	b.n = 0
}

func (b *Growable) Bytes() []byte { return b.data[:b.n] }
func (b *Growable) Text() string  { return string(b.data[:b.n]) }
func (b *Growable) Len() int      { return b.n }
func (b *Growable) Cap() int      { return len(b.data) }

// Reset empties the buffer and keeps its storage for reuse.
func (b *Growable) Reset() {
	b.n = 0
	if len(b.data) > 0 {
		b.data[0] = 0
	}
}

// Fixed is an Accumulator backed by storage allocated once up front. It is
// meant for small endpoints with a known response size.
type Fixed struct {
	data []byte
	n    int
}

// NewFixed creates a fixed accumulator. One byte of capacity is reserved for
// the terminator, so at most capacity-1 body bytes fit.
func NewFixed(capacity int) *Fixed {
	return &Fixed{data: make([]byte, capacity)}
}

// Append copies chunk if it fits. On overflow nothing is written and
// ErrOverflow is returned.
func (b *Fixed) Append(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	if b.n+len(chunk)+1 > len(b.data) {
		return fmt.Errorf("%w: %d buffered + %d incoming exceeds capacity %d",
			ErrOverflow, b.n, len(chunk), len(b.data))
	}

	copy(b.data[b.n:], chunk)
	b.n += len(chunk)
	b.data[b.n] = 0
	return nil
}

func (b *Fixed) Bytes() []byte { return b.data[:b.n] }
func (b *Fixed) Text() string  { return string(b.data[:b.n]) }
func (b *Fixed) Len() int      { return b.n }
func (b *Fixed) Cap() int      { return len(b.data) }

func (b *Fixed) Reset() {
	b.n = 0
	if len(b.data) > 0 {
		b.data[0] = 0
	}
}
