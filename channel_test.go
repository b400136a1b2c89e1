package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelSubscribe(t *testing.T) {
	c := newChannel(1)

	// Assert no subscribers exist
	require.Equal(t, 0, c.subscriberCount())

	sub := c.subscribe()
	require.Equal(t, 1, c.subscriberCount())

	c.subscribe()
	require.Equal(t, 2, c.subscriberCount())

	sub.close()
	sub.close()
	require.Equal(t, 1, c.subscriberCount())
}

func TestChannelPublishWithoutReceivers(t *testing.T) {
	c := newChannel(1)
	require.ErrorIs(t, c.publish([]byte("lost")), errNoReceivers)

	// The stored value is left alone.
	sub := c.subscribe()
	require.Equal(t, initialValue, sub.latest())
}

func TestChannelPublish(t *testing.T) {
	defer verifyNoLeaks(t)

	c := newChannel(1)
	subs := []*subscription{c.subscribe(), c.subscribe(), c.subscribe()}

	require.NoError(t, c.publish([]byte("monkey")))

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub *subscription) {
			defer wg.Done()
			assert.NoError(t, sub.changed(context.Background()))
			assert.Equal(t, "monkey", string(sub.latest()))
		}(sub)
	}
	wg.Wait()
}

func TestChannelCoalesces(t *testing.T) {
	c := newChannel(1)
	sub := c.subscribe()

	require.NoError(t, c.publish([]byte("banana 1")))
	require.NoError(t, c.publish([]byte("banana 2")))
	require.NoError(t, c.publish([]byte("banana 3")))

	require.NoError(t, sub.changed(context.Background()))
	require.Equal(t, "banana 3", string(sub.latest()))

	// Nothing newer has been published, so changed must block.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, sub.changed(ctx), context.DeadlineExceeded)
}

func TestChannelLateSubscriber(t *testing.T) {
	c := newChannel(7)
	early := c.subscribe()
	require.NoError(t, c.publish([]byte("before")))

	late := c.subscribe()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, late.changed(ctx), context.DeadlineExceeded)

	require.NoError(t, c.publish([]byte("after")))
	require.NoError(t, late.changed(context.Background()))
	require.Equal(t, "after", string(late.latest()))

	require.NoError(t, early.changed(context.Background()))
	require.Equal(t, "after", string(early.latest()))
}

func TestSubscriptionClose(t *testing.T) {
	defer verifyNoLeaks(t)

	c := newChannel(1)
	sub := c.subscribe()

	errc := make(chan error, 1)
	go func() { errc <- sub.changed(context.Background()) }()

	sub.close()
	require.ErrorIs(t, <-errc, errSubscriptionClosed)
	require.Equal(t, 0, c.subscriberCount())

	// Closed subscriptions stay closed even when values arrive.
	other := c.subscribe()
	require.NoError(t, c.publish([]byte("x")))
	require.ErrorIs(t, sub.changed(context.Background()), errSubscriptionClosed)
	other.close()
}

func TestChannelConcurrentPublish(t *testing.T) {
	defer verifyNoLeaks(t)

	c := newChannel(1)
	sub := c.subscribe()
	ctx, cancel := context.WithCancel(context.Background())

	const publishers, each = 8, 100
	last := make(chan string, 1)
	go func() {
		var got string
		for sub.changed(ctx) == nil {
			got = string(sub.latest())
		}
		last <- got
	}()

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				assert.NoError(t, c.publish([]byte("tick")))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, c.publish([]byte("done")))

	require.Eventually(t, func() bool {
		c.mux.Lock()
		defer c.mux.Unlock()
		return sub.seen == c.version
	}, time.Second, time.Millisecond)
	cancel()
	require.Equal(t, "done", <-last)
}
