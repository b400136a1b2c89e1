package main

import (
	"context"
	"io"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

type metrics struct {
	log  io.Writer
	reg  gometrics.Registry
	tick time.Duration
}

func newMetrics(log io.Writer, reg gometrics.Registry, tick time.Duration) *metrics {
	return &metrics{
		log:  log,
		reg:  reg,
		tick: tick,
	}
}

// start reports every tick until ctx is done.
func (m *metrics) start(ctx context.Context) {
	t := time.NewTicker(m.tick)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.writeOnce()
		case <-ctx.Done():
			return
		}
	}
}

func (m *metrics) writeOnce() {
	gometrics.WriteJSONOnce(m.reg, m.log)
}

func (m *metrics) incr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, m.reg).Inc(i)
}

func (m *metrics) decr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, m.reg).Dec(i)
}

func (m *metrics) count(name string) int64 {
	return gometrics.GetOrRegisterCounter(name, m.reg).Count()
}
