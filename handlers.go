package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type pingHandler struct {
	s *server
}

func (ph pingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := ph.s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ph.s.log.Debug().Err(err).Msg("ping upgrade failed")
		return
	}
	log := ph.s.log.With().Str("remote", r.RemoteAddr).Logger()
	ph.serve(newWebsocketInteractor(ws, log, ph.s.cfg.ReadLimit), log)
}

// serve answers gate frames until the peer goes away.
func (ph pingHandler) serve(ws websocketManager, log zerolog.Logger) {
	defer ws.wsClose()
	for {
		messageType, message, err := ws.wsReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				log.Debug().Int("code", closeErr.Code).Msg("ping client closed")
			} else {
				log.Debug().Err(err).Msg("ping connection lost")
			}
			return
		}
		if messageType != websocket.TextMessage {
			log.Debug().Int("type", messageType).Msg("ignoring non-text frame")
			continue
		}
		reply, ok := ph.s.gate.handleFrame(string(message))
		if !ok {
			continue
		}
		if err := ws.wsWriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			return
		}
		ph.s.m.incr("pongs", 1)
	}
}

type roomHandler struct {
	s *server
}

func (rh roomHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	room, ok := validateRoom(w, vars["room"])
	if !ok {
		return
	}
	ws, err := rh.s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rh.s.log.Debug().Err(err).Msg("room upgrade failed")
		return
	}
	log := rh.s.log.With().Str("remote", r.RemoteAddr).Logger()
	c := newConnection(newWebsocketInteractor(ws, log, rh.s.cfg.ReadLimit),
		rh.s.hub, rh.s.counter, rh.s.m, log, room, vars["user"])
	c.run(r.Context())
}

// pageHandler serves a browser client for the room on plain GETs.
type pageHandler struct {
	s *server
}

func (gh pageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	room, ok := validateRoom(w, vars["room"])
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := webTemplate.Execute(w, templateArgs{Path: r.URL.Path, Room: uint64(room), User: vars["user"]}); err != nil {
		gh.s.log.Error().Err(err).Msg("render client page")
	}
}

type resetHandler struct {
	s *server
}

func (rh resetHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	rh.s.counter.reset()
	w.WriteHeader(http.StatusOK)
}

type viewsHandler struct {
	s *server
}

func (vh viewsHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(vh.s.counter.String()))
}

func helloHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Hello, world!"))
}

func validateRoom(w http.ResponseWriter, s string) (roomID, bool) {
	room, err := parseRoom(s)
	if err != nil {
		sendBadRequestError(w, err.Error())
		return 0, false
	}
	return room, true
}

func sendBadRequestError(w http.ResponseWriter, str string) {
	http.Error(w,
		fmt.Sprintf("Error: bad request. %s", str),
		http.StatusBadRequest)
}
