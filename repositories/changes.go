package repositories

import (
	"log/slog"
	"sync"

	"tempchat/contract"
	"tempchat/domain"
	cherrors "tempchat/errors"
)

// subscriptionBuffer is how far a subscriber may lag behind the writers
// before its stream is terminated.
const subscriptionBuffer = 256

// ChangeFeed broadcasts message change events to every live subscription in
// the process. Events are delivered in publish order per subscriber.
//
// A subscriber that stops draining its channel is closed instead of stalling
// every writer; its feed ends early, which consumers already treat as a
// terminal stream condition.
//
// ChangeFeed is safe for concurrent use by multiple goroutines.
type ChangeFeed struct {
	log    *slog.Logger
	mu     sync.Mutex
	subs   map[*FeedSubscription]struct{}
	closed bool
}

func NewChangeFeed(log *slog.Logger) *ChangeFeed {
	return &ChangeFeed{log: log, subs: make(map[*FeedSubscription]struct{})}
}

type FeedSubscription struct {
	feed   *ChangeFeed
	events chan domain.ChangeEvent
	closed bool
}

func (s *FeedSubscription) Events() <-chan domain.ChangeEvent { return s.events }

// Close releases the subscription. Idempotent; no events are delivered after
// it returns.
func (s *FeedSubscription) Close() {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	s.feed.drop(s)
}

// Subscribe registers a new live event sequence covering the whole message
// collection, unfiltered. Fails once the feed itself has shut down.
func (f *ChangeFeed) Subscribe() (contract.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, cherrors.ErrStreamUnavailable
	}
	s := &FeedSubscription{feed: f, events: make(chan domain.ChangeEvent, subscriptionBuffer)}
	f.subs[s] = struct{}{}
	return s, nil
}

// Publish delivers one event to every subscription.
func (f *ChangeFeed) Publish(evt domain.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		select {
		case s.events <- evt:
		default:
			f.log.Warn("Change subscription fell behind, terminating its stream")
			f.drop(s)
		}
	}
}

// Close terminates every subscription and rejects new ones.
func (f *ChangeFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for s := range f.subs {
		f.drop(s)
	}
}

// drop must be called with f.mu held.
func (f *ChangeFeed) drop(s *FeedSubscription) {
	if s.closed {
		return
	}
	s.closed = true
	delete(f.subs, s)
	close(s.events)
}
