package container

import "github.com/pkg/errors"

// DefaultGrowthFactor and DefaultMaxSize are the growth-policy constants
// Design Notes §9 asks to be surfaced as configuration rather than baked
// into the growth loop.
const (
	DefaultGrowthFactor = 1.5
	DefaultMaxSize       = 64 << 20 // 64 MiB hard cap
	defaultInitialSize   = 256
)

// ErrBufferOverflow is raised when growing the output buffer would exceed
// its configured hard maximum.
var ErrBufferOverflow = errors.New("buffer overflow: exceeded maximum container size")

// growBuffer is an append-only byte buffer that grows geometrically (by
// Factor) up to a hard Max, raising ErrBufferOverflow rather than growing
// past it. Plain append() on a []byte already amortizes growth, but the
// spec calls for an explicit, capped policy (§4.E), so this makes that
// policy a first-class, testable thing instead of leaving it implicit in
// slice-growth heuristics.
type growBuffer struct {
	data   []byte
	factor float64
	max    int
}

func newGrowBuffer(factor float64, max int) *growBuffer {
	return &growBuffer{
		data:   make([]byte, 0, defaultInitialSize),
		factor: factor,
		max:    max,
	}
}

func (b *growBuffer) ensure(additional int) error {
	needed := len(b.data) + additional
	if needed > b.max {
		return errors.Wrapf(ErrBufferOverflow, "need %d bytes, max %d", needed, b.max)
	}
	if needed <= cap(b.data) {
		return nil
	}
	newCap := cap(b.data)
	if newCap == 0 {
		newCap = defaultInitialSize
	}
	for newCap < needed {
		grown := float64(newCap) * b.factor
		newCap = int(grown)
		if newCap <= 0 {
			newCap = needed
		}
	}
	if newCap > b.max {
		newCap = b.max
	}
	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
	return nil
}

func (b *growBuffer) Write(p []byte) error {
	if err := b.ensure(len(p)); err != nil {
		return err
	}
	b.data = append(b.data, p...)
	return nil
}

func (b *growBuffer) WriteByte(c byte) error {
	return b.Write([]byte{c})
}

func (b *growBuffer) Len() int { return len(b.data) }

func (b *growBuffer) Bytes() []byte { return b.data }
