package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/liveresults/liveresults/internal/diff"
	"github.com/liveresults/liveresults/internal/results"
)

// DefaultWorkers is the number of parallel deliveries per broadcast.
const DefaultWorkers = 8

// Subscriber is one live viewer. Send must not block for long: a slow or
// closed subscriber should return an error so it can be evicted.
type Subscriber interface {
	ID() string
	Send(ctx context.Context, msg results.Message) error
}

// StateSource returns the last published state, or nil if there is none.
type StateSource interface {
	Load() *results.State
}

// Stats are cumulative delivery counters.
type Stats struct {
	Broadcasts uint64
	Deliveries uint64
	Evictions  uint64
}

// Hub tracks connected subscribers, replays the published state to joiners
// and fans messages out to everyone.
//
// Hub is safe for concurrent use.
type Hub struct {
	states  StateSource
	status  func() results.StatusInfo
	workers int

	// publishMu orders replays against publish bursts: a joiner's replay is
	// either fully before or fully after a cycle's deltas.
	publishMu sync.Mutex

	mu   sync.RWMutex
	subs map[Subscriber]struct{}

	broadcasts atomic.Uint64
	deliveries atomic.Uint64
	evictions  atomic.Uint64
}

// New creates a Hub that replays from states and reports status() to every
// new subscriber. workers <= 0 selects DefaultWorkers.
func New(states StateSource, status func() results.StatusInfo, workers int) *Hub {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if status == nil {
		status = func() results.StatusInfo { return results.StatusInfo{} }
	}
	return &Hub{
		states:  states,
		status:  status,
		workers: workers,
		subs:    make(map[Subscriber]struct{}),
	}
}

// Connect registers sub, sends the status notice and, when a state has been
// published, replays it in full. A failed send evicts sub and is returned.
//
// Connect and Publish exclude each other, so deltas of a cycle never reach
// sub ahead of an older replay. Send must not call back into the Hub.
func (h *Hub) Connect(ctx context.Context, sub Subscriber) error {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.register(sub)
	slog.Info("hub: subscriber connected", "id", sub.ID(), "active", h.Count())

	if err := sub.Send(ctx, results.StatusMessage(h.status())); err != nil {
		h.evict(sub, err)
		return fmt.Errorf("hub: send status to %s: %w", sub.ID(), err)
	}

	st := h.states.Load()
	if st == nil {
		return nil
	}
	slog.Debug("hub: replaying state", "id", sub.ID(),
		"distances", len(st.DistanceIDs()), "competitors", st.CompetitorCount())
	for _, msg := range results.ReplayMessages(st) {
		if err := sub.Send(ctx, msg); err != nil {
			h.evict(sub, err)
			return fmt.Errorf("hub: replay to %s: %w", sub.ID(), err)
		}
	}
	return nil
}

// Disconnect removes sub. Removing an unknown subscriber is a no-op.
func (h *Hub) Disconnect(sub Subscriber) {
	if h.unregister(sub) {
		slog.Info("hub: subscriber disconnected", "id", sub.ID(), "active", h.Count())
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stats returns the cumulative delivery counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Broadcasts: h.broadcasts.Load(),
		Deliveries: h.deliveries.Load(),
		Evictions:  h.evictions.Load(),
	}
}

// Broadcast delivers msg to the subscribers registered when the call starts.
// Deliveries run in parallel and independently; every subscriber whose
// delivery fails is evicted. It returns the number of evictions.
func (h *Hub) Broadcast(ctx context.Context, msg results.Message) int {
	targets := h.snapshot()
	h.broadcasts.Add(1)

	var evicted atomic.Int64
	var g errgroup.Group
	g.SetLimit(h.workers)
	for _, sub := range targets {
		sub := sub
		g.Go(func() error {
			if err := sub.Send(ctx, msg); err != nil {
				if h.evict(sub, err) {
					evicted.Add(1)
				}
				return nil
			}
			h.deliveries.Add(1)
			return nil
		})
	}
	_ = g.Wait() // deliveries never return an error

	return int(evicted.Load())
}

// Publish broadcasts one cycle's changes: the event name if it changed, then
// each changed distance, then each changed competitor.
func (h *Hub) Publish(ctx context.Context, res diff.Result, curr *results.State) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	if res.NameChanged && curr != nil {
		h.Broadcast(ctx, results.EventNameMessage(curr.Name))
	}
	for _, d := range res.Distances {
		h.Broadcast(ctx, results.DistanceMessage(d))
	}
	for _, c := range res.Competitors {
		slog.Debug("hub: competitor update",
			"start_number", c.StartNumber,
			"name", c.Name,
			"laps", c.LapsCount,
			"total_time", c.FormattedTotalTime,
			"position", c.Position,
		)
		h.Broadcast(ctx, results.CompetitorMessage(c))
	}
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(sub Subscriber) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(sub Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return false
	}
	delete(h.subs, sub)
	return true
}

// evict removes sub after a failed delivery. It reports whether sub was
// still registered.
func (h *Hub) evict(sub Subscriber, cause error) bool {
	if !h.unregister(sub) {
		return false
	}
	h.evictions.Add(1)
	slog.Warn("hub: send failed, dropping subscriber", "id", sub.ID(), "err", cause)
	return true
}

func (h *Hub) snapshot() []Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Subscriber, 0, len(h.subs))
	for s := range h.subs {
		out = append(out, s)
	}
	return out
}
