// Package ratelimit bounds how much simulation work MCP clients can request.
//
// Each tool has a token bucket measured in cost units. Cheap tools spend one
// unit per call; walk_simulate spends units proportional to the positions
// it records, so one huge run and many small runs drain the same budget.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLimited is returned when a tool's budget is exhausted.
var ErrLimited = errors.New("rate limit exceeded")

// Policy describes one bucket.
type Policy struct {
	// Rate is the number of cost units restored per second.
	Rate float64

	// Burst is the bucket capacity, and its initial fill.
	Burst float64
}

// Bucket is a token bucket. It is safe for concurrent use.
type Bucket struct {
	mu     sync.Mutex
	policy Policy
	tokens float64
	last   time.Time
	now    func() time.Time
}

// NewBucket creates a full bucket.
func NewBucket(p Policy) *Bucket {
	return newBucket(p, time.Now)
}

func newBucket(p Policy, now func() time.Time) *Bucket {
	return &Bucket{policy: p, tokens: p.Burst, last: now(), now: now}
}

// Take spends cost units if the bucket holds at least that many.
// A cost above Burst can never succeed.
func (b *Bucket) Take(cost float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.policy.Burst, b.tokens+elapsed*b.policy.Rate)
		b.last = now
	}
	if b.tokens < cost {
		return false
	}
	b.tokens -= cost
	return true
}

// Tools maps tool names to their buckets. Tools without a bucket are unlimited.
type Tools map[string]*Bucket

// PositionsPerUnit is the number of recorded positions charged as one
// walk_simulate cost unit.
const PositionsPerUnit = 10_000

// DefaultTools returns the buckets used by the MCP server.
func DefaultTools() Tools {
	return Tools{
		// 50 units is 500k positions, e.g. 100 walkers for 5000 steps.
		"walk_simulate": NewBucket(Policy{Rate: 1, Burst: 50}),
		"walk_history":  NewBucket(Policy{Rate: 1, Burst: 10}),
		"walk_stats":    NewBucket(Policy{Rate: 1, Burst: 10}),
		"walk_export":   NewBucket(Policy{Rate: 10.0 / 60.0, Burst: 3}),
	}
}

// SimulationCost converts a run's size into cost units, at least 1.
func SimulationCost(walkers, steps int) float64 {
	return max(1, float64(walkers)*float64(steps+1)/PositionsPerUnit)
}

// Check charges cost to tool's bucket.
func (t Tools) Check(tool string, cost float64) error {
	b, ok := t[tool]
	if !ok {
		return nil
	}
	if cost > b.policy.Burst {
		return fmt.Errorf("%s: request cost %.1f exceeds capacity %.0f: %w", tool, cost, b.policy.Burst, ErrLimited)
	}
	if !b.Take(cost) {
		return fmt.Errorf("%s: %w, please try again shortly", tool, ErrLimited)
	}
	return nil
}
