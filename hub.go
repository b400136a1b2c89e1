package main

import (
	"fmt"
	"strconv"
	"sync"
)

type roomID uint64

// hub owns every room's channel. Rooms are created on first use and live for
// the rest of the process.
type hub struct {
	mux      sync.RWMutex
	channels channels
	m        *metrics
}

type channels map[roomID]*channel

func newHub(m *metrics) *hub {
	return &hub{
		channels: make(channels),
		m:        m,
	}
}

func (h *hub) getOrCreate(id roomID) *channel {
	h.mux.RLock()
	c, ok := h.channels[id]
	h.mux.RUnlock()
	if ok {
		return c
	}

	h.mux.Lock()
	defer h.mux.Unlock()
	// Another connection may have created it between the two locks.
	if c, ok := h.channels[id]; ok {
		return c
	}
	c = newChannel(id)
	h.channels[id] = c
	h.m.incr("rooms", 1)
	return c
}

func (h *hub) len() int {
	h.mux.RLock()
	defer h.mux.RUnlock()

	return len(h.channels)
}

func parseRoom(s string) (roomID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadRoom, s)
	}
	return roomID(n), nil
}
