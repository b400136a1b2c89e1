package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Sessions never time out, so unlike a typical gorilla client there are no
// read or write deadlines and no keepalive pings here.

type websocketManager interface {
	wsReadMessage() (int, []byte, error)
	wsWriteMessage(int, []byte) error
	wsClose()
}

type websocketInteractor struct {
	ws  *websocket.Conn
	log zerolog.Logger
}

func newWebsocketInteractor(ws *websocket.Conn, log zerolog.Logger, readLimit int64) websocketInteractor {
	w := websocketInteractor{ws: ws, log: log}
	w.wsSetReadLimit(readLimit)
	w.wsSetControlHandlers()
	return w
}

func (w websocketInteractor) wsSetReadLimit(limit int64) {
	w.ws.SetReadLimit(limit)
}

// wsSetControlHandlers logs control frames. Pings are still answered.
func (w websocketInteractor) wsSetControlHandlers() {
	ping := w.ws.PingHandler()
	w.ws.SetPingHandler(func(data string) error {
		w.log.Debug().Msg("ping frame")
		return ping(data)
	})
	w.ws.SetPongHandler(func(string) error {
		w.log.Debug().Msg("pong frame")
		return nil
	})
}

func (w websocketInteractor) wsClose() {
	w.ws.Close()
}

func (w websocketInteractor) wsReadMessage() (messageType int, p []byte, err error) {
	return w.ws.ReadMessage()
}

func (w websocketInteractor) wsWriteMessage(messageType int, payload []byte) error {
	return w.ws.WriteMessage(messageType, payload)
}

// newUpgrader accepts any origin unless one is configured.
func newUpgrader(origin string) *websocket.Upgrader {
	u := &websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}
	u.CheckOrigin = func(r *http.Request) bool {
		return origin == "" || r.Header.Get("Origin") == origin
	}
	return u
}

func isWebsocketUpgrade(r *http.Request, _ *mux.RouteMatch) bool {
	return websocket.IsWebSocketUpgrade(r)
}
