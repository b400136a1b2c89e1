// Roomcast relays chat messages between websocket clients in numbered rooms,
// and plays a tiny ping/pong game on the side.
//
//	roomcast -addr=:8000
//
// Nothing is stored. A message is handed to whoever is in the room when it
// is sent and then forgotten; a subscriber that falls behind only ever sees
// the newest message. Rooms are created on first use.
//
// Join a room by opening a websocket to
//
//	ws://localhost:8000/19/ws/room/{room}/user/{name}
//
// and send {"message": "..."} text frames. Every subscriber of the room,
// sender included, receives {"user": "{name}", "message": "..."}. Messages
// longer than 128 characters are dropped. Opening the same URL in a browser
// without upgrading serves a small client page.
//
// The ping game lives at ws://localhost:8000/19/ws/ping: "serve" starts it,
// after which every "ping" is answered with "pong".
//
// GET /19/views reports how many chat messages have been delivered so far
// (approximately) and POST /19/reset sets that count back to zero.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "roomcast: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	log, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := newMetrics(log.With().Str("component", "metrics").Logger(), gometrics.NewRegistry(), cfg.MetricsTick)
	go m.start(ctx)
	defer m.writeOnce()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: newHandler(newServer(cfg, m, log)),
		// Sessions end when ctx does, Shutdown does not reach hijacked conns.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("prefix", cfg.Prefix).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.StopTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// server holds the process-wide state shared by all handlers.
type server struct {
	cfg      config
	hub      *hub
	gate     *gate
	counter  *deliveryCounter
	m        *metrics
	log      zerolog.Logger
	upgrader *websocket.Upgrader
}

func newServer(cfg config, m *metrics, log zerolog.Logger) *server {
	return &server{
		cfg:      cfg,
		hub:      newHub(m),
		gate:     &gate{},
		counter:  newDeliveryCounter(m.reg),
		m:        m,
		log:      log,
		upgrader: newUpgrader(cfg.Origin),
	}
}

func newHandler(s *server) http.Handler {
	handler := mux.NewRouter()
	handler.Methods("GET").Path("/").HandlerFunc(helloHandler)

	api := handler
	if s.cfg.Prefix != "" {
		api = handler.PathPrefix(s.cfg.Prefix).Subrouter()
	}

	const roomPath = "/ws/room/{room:[0-9]+}/user/{user}"

	// Route websocket requests
	api.Path("/ws/ping").MatcherFunc(isWebsocketUpgrade).Handler(pingHandler{s: s})
	api.Path(roomPath).MatcherFunc(isWebsocketUpgrade).Handler(roomHandler{s: s})

	// Route other GET and POST requests
	api.Path(roomPath).Methods("GET").Handler(pageHandler{s: s})
	api.Path("/views").Methods("GET").Handler(viewsHandler{s: s})
	api.Path("/reset").Methods("POST").Handler(resetHandler{s: s})

	return handler
}
