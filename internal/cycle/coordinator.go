package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/liveresults/liveresults/internal/diff"
	"github.com/liveresults/liveresults/internal/poller"
	"github.com/liveresults/liveresults/internal/processor"
	"github.com/liveresults/liveresults/internal/results"
)

// Fetcher returns the raw event payload for one cycle.
type Fetcher interface {
	Fetch(ctx context.Context) (*processor.RawEvent, error)
}

// Publisher fans messages out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, res diff.Result, curr *results.State)
	Broadcast(ctx context.Context, msg results.Message) int
}

// Cache holds the last published state.
type Cache interface {
	Load() *results.State
	Swap(st *results.State) *results.State
}

// Stats are cumulative cycle counters.
type Stats struct {
	Cycles      uint64 // ticks started
	Published   uint64 // cycles that broadcast at least one change
	Unchanged   uint64 // cycles skipped because nothing changed
	FetchErrors uint64 // cycles skipped because the fetch failed
	Messages    uint64 // entity messages published
}

// Coordinator runs the fetch, process, diff, publish sequence. Ticks never
// overlap: Run drives them from a single goroutine and Tick holds a lock for
// the whole cycle.
type Coordinator struct {
	fetch    Fetcher
	pub      Publisher
	cache    Cache
	interval time.Duration

	tickMu sync.Mutex

	optsMu sync.RWMutex
	opts   diff.Options

	cycles      atomic.Uint64
	published   atomic.Uint64
	unchanged   atomic.Uint64
	fetchErrors atomic.Uint64
	messages    atomic.Uint64
}

// New returns a Coordinator that ticks every interval with the default diff
// policy.
func New(f Fetcher, p Publisher, c Cache, interval time.Duration) *Coordinator {
	return &Coordinator{
		fetch:    f,
		pub:      p,
		cache:    c,
		interval: interval,
		opts:     diff.DefaultOptions(),
	}
}

// SetOptions replaces the diff policy. It takes effect on the next tick.
func (c *Coordinator) SetOptions(opts diff.Options) {
	c.optsMu.Lock()
	c.opts = opts
	c.optsMu.Unlock()
	slog.Info("cycle: diff options updated", "suppress_untimed_repeats", opts.SuppressUntimedRepeats)
}

// Options returns the active diff policy.
func (c *Coordinator) Options() diff.Options {
	c.optsMu.RLock()
	defer c.optsMu.RUnlock()
	return c.opts
}

// Stats returns the cumulative cycle counters.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Cycles:      c.cycles.Load(),
		Published:   c.published.Load(),
		Unchanged:   c.unchanged.Load(),
		FetchErrors: c.fetchErrors.Load(),
		Messages:    c.messages.Load(),
	}
}

// Tick runs one cycle. It reports whether anything was published. A fetch
// error leaves the cache untouched and is returned; when the source itself
// flagged the payload as unsuccessful, subscribers also receive an error
// message.
func (c *Coordinator) Tick(ctx context.Context) (bool, error) {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	c.cycles.Add(1)
	start := time.Now()

	raw, err := c.fetch.Fetch(ctx)
	if err != nil {
		c.fetchErrors.Add(1)
		if errors.Is(err, poller.ErrSourceUnsuccessful) {
			c.pub.Broadcast(ctx, results.ErrorMessage(err.Error()))
		}
		return false, fmt.Errorf("cycle: fetch: %w", err)
	}

	prev := c.cache.Load()
	curr := processor.ProcessWithPrevious(*raw, prev)
	if curr.Equal(prev) {
		c.unchanged.Add(1)
		return false, nil
	}

	res := diff.Compute(prev, curr, c.Options())

	// Swap first so a subscriber joining mid-broadcast replays curr.
	c.cache.Swap(curr)

	if res.Empty() {
		c.unchanged.Add(1)
		return false, nil
	}
	c.pub.Publish(ctx, res, curr)

	n := len(res.Distances) + len(res.Competitors)
	if res.NameChanged {
		n++
	}
	c.published.Add(1)
	c.messages.Add(uint64(n))

	slog.Info("cycle: published",
		"event", curr.Name,
		"distances", len(res.Distances),
		"competitors", len(res.Competitors),
		"name_changed", res.NameChanged,
		"took", time.Since(start),
	)
	return true, nil
}

// Run ticks immediately and then every interval until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	slog.Info("cycle: started", "interval", c.interval)

	c.runTick(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("cycle: stopped")
			return
		case <-ticker.C:
			c.runTick(ctx)
		}
	}
}

func (c *Coordinator) runTick(ctx context.Context) {
	if _, err := c.Tick(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("cycle: skipped", "err", err)
	}
}
