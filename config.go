package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type config struct {
	Addr        string        `env:"ROOMCAST_ADDR" envDefault:":8000" validate:"required"`
	Prefix      string        `env:"ROOMCAST_PREFIX" envDefault:"/19" validate:"omitempty,startswith=/,endsnotwith=/"`
	Origin      string        `env:"ROOMCAST_ORIGIN" validate:"omitempty,url"`
	LogLevel    string        `env:"ROOMCAST_LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	LogJSON     bool          `env:"ROOMCAST_LOG_JSON"`
	MetricsTick time.Duration `env:"ROOMCAST_METRICS_TICK" envDefault:"60s" validate:"gt=0"`
	StopTimeout time.Duration `env:"ROOMCAST_STOP_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	ReadLimit   int64         `env:"ROOMCAST_READ_LIMIT" envDefault:"65536" validate:"gte=512"`
}

// loadConfig reads the environment first, then lets command line flags
// override it.
func loadConfig(args []string) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("roomcast", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "http service address")
	fs.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "path prefix for all routes")
	fs.StringVar(&cfg.Origin, "origin", cfg.Origin, "websocket server checks Origin headers against this scheme://host[:port]")
	fs.StringVar(&cfg.LogLevel, "log.level", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.LogJSON, "log.json", cfg.LogJSON, "log as JSON instead of console text")
	fs.DurationVar(&cfg.MetricsTick, "metrics.tick", cfg.MetricsTick, "metrics: duration between reports")
	fs.DurationVar(&cfg.StopTimeout, "stop-timeout", cfg.StopTimeout, "stop timeout")
	fs.Int64Var(&cfg.ReadLimit, "read-limit", cfg.ReadLimit, "maximum inbound websocket frame size in bytes")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
