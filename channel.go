package main

import (
	"context"
	"sync"
)

// initialValue is what a room holds before anything is published. No
// subscriber ever observes it, since a subscription starts at the current
// version.
var initialValue = []byte("{}")

// channel is a room's single-slot broadcast. Subscribers see only the most
// recently published value; values published while a subscriber is busy are
// coalesced, never queued.
type channel struct {
	id roomID

	mux         sync.Mutex // Protects value, version and subscribers
	value       []byte
	version     uint64
	subscribers subscribers
}

type subscribers map[*subscription]interface{}

type subscription struct {
	c    *channel
	wake chan struct{}
	done chan struct{}
	seen uint64
	once sync.Once
}

func newChannel(id roomID) *channel {
	return &channel{
		id:          id,
		value:       initialValue,
		subscribers: make(subscribers),
	}
}

func (c *channel) subscribe() *subscription {
	c.mux.Lock()
	defer c.mux.Unlock()

	sub := &subscription{
		c:    c,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		seen: c.version,
	}
	c.subscribers[sub] = nil
	return sub
}

func (c *channel) unsubscribe(sub *subscription) {
	c.mux.Lock()
	defer c.mux.Unlock()

	delete(c.subscribers, sub)
}

// publish replaces the current value and wakes every subscriber. With no
// subscribers left the value is kept as is and errNoReceivers is returned.
func (c *channel) publish(value []byte) error {
	c.mux.Lock()
	defer c.mux.Unlock()

	if len(c.subscribers) == 0 {
		return errNoReceivers
	}
	c.value = value
	c.version++
	for sub := range c.subscribers {
		select {
		case sub.wake <- struct{}{}:
		default:
			// A wake is already pending, it will pick up this value.
		}
	}
	return nil
}

func (c *channel) subscriberCount() int {
	c.mux.Lock()
	defer c.mux.Unlock()

	return len(c.subscribers)
}

// changed blocks until a value newer than the last one returned by latest is
// available.
func (s *subscription) changed(ctx context.Context) error {
	for {
		select {
		case <-s.done:
			return errSubscriptionClosed
		default:
		}

		s.c.mux.Lock()
		newer := s.c.version != s.seen
		s.c.mux.Unlock()
		if newer {
			return nil
		}

		select {
		case <-s.wake:
		case <-s.done:
			return errSubscriptionClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// latest returns the current value and marks it as seen.
func (s *subscription) latest() []byte {
	s.c.mux.Lock()
	defer s.c.mux.Unlock()

	s.seen = s.c.version
	return s.c.value
}

func (s *subscription) close() {
	s.once.Do(func() {
		s.c.unsubscribe(s)
		close(s.done)
	})
}
