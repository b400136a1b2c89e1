package main

import (
	"strconv"

	gometrics "github.com/rcrowley/go-metrics"
)

// deliveryCounter approximates how many chat messages have been handed to
// subscribers across all rooms.
type deliveryCounter struct {
	c gometrics.Counter
}

func newDeliveryCounter(reg gometrics.Registry) *deliveryCounter {
	return &deliveryCounter{c: gometrics.GetOrRegisterCounter("deliveries", reg)}
}

func (d *deliveryCounter) add(n int) {
	if n > 0 {
		d.c.Inc(int64(n))
	}
}

func (d *deliveryCounter) reset() {
	d.c.Clear()
}

func (d *deliveryCounter) get() uint64 {
	return uint64(d.c.Count())
}

func (d *deliveryCounter) String() string {
	return strconv.FormatUint(d.get(), 10)
}
