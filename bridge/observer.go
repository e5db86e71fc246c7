package bridge

import "time"

// Observer is notified after every guest-to-host call. Implementations must not retain the
// error beyond the call; it may wrap adapter internals.
type Observer interface {
	ObserveCall(role Role, op string, elapsed time.Duration, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(role Role, op string, elapsed time.Duration, err error)

func (f ObserverFunc) ObserveCall(role Role, op string, elapsed time.Duration, err error) {
	f(role, op, elapsed, err)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(Role, string, time.Duration, error) {}
