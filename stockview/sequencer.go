package stockview

import (
	"context"
	"sync"
	"time"
)

// Ticket tags one in-flight request of a page view.
type Ticket struct {
	View string
	Seq  uint64
}

type viewState struct {
	seq     uint64
	cancel  context.CancelFunc
	touched time.Time
}

// DefaultMaxViews bounds the views a Sequencer tracks when none is given.
const DefaultMaxViews = 10000

// Sequencer keeps the latest request per page view. Beginning a request
// cancels the view's previous one, and Finish reports whether a ticket is
// still the latest so stale responses can be dropped.
type Sequencer struct {
	mu       sync.Mutex
	views    map[string]*viewState
	ttl      time.Duration
	maxViews int
	now      func() time.Time
}

// NewSequencer forgets idle views after ttl and tracks at most maxViews at
// once. When full, the least recently used view is evicted.
func NewSequencer(ttl time.Duration, maxViews int) *Sequencer {
	if maxViews <= 0 {
		maxViews = DefaultMaxViews
	}
	return &Sequencer{
		views:    make(map[string]*viewState),
		ttl:      ttl,
		maxViews: maxViews,
		now:      time.Now,
	}
}

// Begin starts a request for view. The returned context is canceled when a
// newer request for the same view begins.
func (s *Sequencer) Begin(ctx context.Context, view string) (context.Context, Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	st, ok := s.views[view]
	if !ok {
		if len(s.views) >= s.maxViews {
			s.evictOldestLocked()
		}
		st = &viewState{}
		s.views[view] = st
	}
	if st.cancel != nil {
		st.cancel()
	}
	st.seq++
	st.touched = now

	cctx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	return cctx, Ticket{View: view, Seq: st.seq}
}

// Finish ends the request for t and reports whether it is still the latest
// for its view. A false result means the response must be discarded.
func (s *Sequencer) Finish(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.views[t.View]
	if !ok || st.seq != t.Seq {
		return false
	}
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	st.touched = s.now()
	return true
}

// Len returns the number of tracked views.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

func (s *Sequencer) sweepLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for view, st := range s.views {
		if st.cancel == nil && now.Sub(st.touched) > s.ttl {
			delete(s.views, view)
		}
	}
}

// evictOldestLocked drops the least recently touched view, canceling its
// request if one is in flight.
func (s *Sequencer) evictOldestLocked() {
	var (
		oldest string
		at     time.Time
		found  bool
	)
	for view, st := range s.views {
		if !found || st.touched.Before(at) {
			oldest, at, found = view, st.touched, true
		}
	}
	if !found {
		return
	}
	if st := s.views[oldest]; st.cancel != nil {
		st.cancel()
	}
	delete(s.views, oldest)
}
