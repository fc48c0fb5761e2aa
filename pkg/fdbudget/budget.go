// Package fdbudget implements the process-wide counted reservation of
// file descriptors described in spec.md §4.3: a class has a limit, a
// reservation either fits under the limit or is refused outright, and
// every teardown path releases exactly what it reserved.
package fdbudget

import (
	"fmt"
	"sync/atomic"
)

// Class identifies a budget class. Today there is exactly one, APPS,
// but the type is exported so a future class does not require a
// signature change throughout the reconciler.
type Class int

const (
	APPS Class = iota
)

func (c Class) String() string {
	switch c {
	case APPS:
		return "apps"
	default:
		return fmt.Sprintf("unknown class: %d", c)
	}
}

// Budget is one class's atomic counted reservation against a fixed
// limit, set once at construction from configuration.
type Budget struct {
	class    Class
	limit    int64
	reserved atomic.Int64
}

func New(class Class, limit int64) *Budget {
	return &Budget{class: class, limit: limit}
}

// Reserve attempts to reserve n descriptors. It fails without
// partially reserving if the budget would be exceeded.
func (b *Budget) Reserve(n int64) error {
	for {
		cur := b.reserved.Load()
		next := cur + n
		if next > b.limit {
			return fmt.Errorf("fdbudget: class %s exhausted: have %d, limit %d, requested %d", b.class, cur, b.limit, n)
		}
		if b.reserved.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

// Release gives back n descriptors previously reserved. Releasing
// more than was ever reserved is a programming error and clamps at
// zero rather than going negative, matching the teacher's stance that
// internal invariants are trusted, not defensively re-validated, but
// a wrapping counter here would corrupt every later Reserve call.
func (b *Budget) Release(n int64) {
	for {
		cur := b.reserved.Load()
		next := cur - n
		if next < 0 {
			next = 0
		}
		if b.reserved.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Reserved returns the current reservation, for telemetry.
func (b *Budget) Reserved() int64 {
	return b.reserved.Load()
}

// Limit returns the configured limit for this class.
func (b *Budget) Limit() int64 {
	return b.limit
}

// ChannelFDs computes the reservation spec.md §4.3 assigns a channel:
// two descriptors per stream plus two for the channel object itself.
func ChannelFDs(expectedStreamCount uint32) int64 {
	return 2*int64(expectedStreamCount) + 2
}
