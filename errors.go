package main

import "errors"

var (
	errNoReceivers        = errors.New("no live subscribers")
	errSubscriptionClosed = errors.New("subscription closed")
	errMalformedFrame     = errors.New("malformed chat frame")
	errBadRoom            = errors.New("room must be a non-negative integer")
)
