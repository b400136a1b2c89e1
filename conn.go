package main

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// connection is one participant in one room. It lives as long as the
// websocket and runs a reader and a writer; whichever stops first stops the
// other.
type connection struct {
	id      string
	ws      websocketManager
	h       *hub
	room    roomID
	user    string
	counter *deliveryCounter
	m       *metrics
	log     zerolog.Logger

	channel *channel
	sub     *subscription
}

func newConnection(ws websocketManager, h *hub, counter *deliveryCounter, m *metrics, log zerolog.Logger, room roomID, user string) *connection {
	id := uuid.NewString()
	return &connection{
		id:      id,
		ws:      ws,
		h:       h,
		room:    room,
		user:    user,
		counter: counter,
		m:       m,
		log:     log.With().Str("session", id).Uint64("room", uint64(room)).Str("user", user).Logger(),
	}
}

// run blocks until the session is over. The socket is closed on return.
func (c *connection) run(ctx context.Context) {
	c.channel = c.h.getOrCreate(c.room)
	c.sub = c.channel.subscribe()
	c.m.incr("websockets", 1)
	c.log.Info().Msg("joined room")
	defer func() {
		c.sub.close()
		c.m.decr("websockets", 1)
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 2)
	go func() { done <- c.writer(ctx) }()
	go func() { done <- c.reader() }()

	err := <-done
	// The reader only unblocks once the socket is closed.
	cancel()
	c.ws.wsClose()
	<-done

	c.logEnd(err)
}

func (c *connection) logEnd(err error) {
	var closeErr *websocket.CloseError
	switch {
	case errors.As(err, &closeErr):
		c.log.Info().Int("code", closeErr.Code).Str("reason", closeErr.Text).Msg("client closed")
	case errors.Is(err, errMalformedFrame):
		c.log.Warn().Err(err).Msg("dropping session")
	case errors.Is(err, errNoReceivers):
		c.log.Info().Msg("room has no receivers, leaving")
	case errors.Is(err, context.Canceled):
		c.log.Info().Msg("session cancelled")
	default:
		c.log.Info().Err(err).Msg("connection lost")
	}
}

func (c *connection) reader() error {
	for {
		messageType, message, err := c.ws.wsReadMessage()
		if err != nil {
			return err
		}
		c.m.incr("conn.recv", 1)
		if messageType != websocket.TextMessage {
			c.log.Debug().Int("type", messageType).Msg("ignoring non-text frame")
			continue
		}
		if err := c.readMessage(message); err != nil {
			return err
		}
	}
}

// readMessage publishes one inbound chat frame to the room.
func (c *connection) readMessage(data []byte) error {
	frame, err := decodeChatFrame(data)
	if err != nil {
		c.m.incr("malformed", 1)
		return err
	}
	if frame.hasUser {
		c.log.Debug().Msg("ignoring frame that already has a user")
		return nil
	}
	if utf8.RuneCountInString(frame.message) > maxChatMessageLen {
		c.m.incr("drops", 1)
		c.log.Debug().Int("len", utf8.RuneCountInString(frame.message)).Msg("message too long")
		return nil
	}

	out, err := encodeChatMessage(c.user, frame.message)
	if err != nil {
		return err
	}
	if err := c.channel.publish(out); err != nil {
		return err
	}
	// Read after the publish, so this may be off by a subscriber or two.
	c.counter.add(c.channel.subscriberCount())
	return nil
}

func (c *connection) writer(ctx context.Context) error {
	for {
		if err := c.sub.changed(ctx); err != nil {
			return err
		}
		if err := c.ws.wsWriteMessage(websocket.TextMessage, c.sub.latest()); err != nil {
			return err
		}
		c.m.incr("conn.send", 1)
	}
}
