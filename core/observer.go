package core

import (
	"log/slog"
	"time"
)

type EventType string

const (
	EventPathSelected    EventType = "PathSelected"
	EventHopCommitted    EventType = "HopCommitted"
	EventLinkDisrupted   EventType = "LinkDisrupted"
	EventBundleStored    EventType = "BundleStored"
	EventBufferOverflow  EventType = "BufferOverflow"
	EventRerouted        EventType = "Rerouted"
	EventRecoveryAttempt EventType = "RecoveryAttempt"
	EventLinkRecovered   EventType = "LinkRecovered"
	EventPathExhausted   EventType = "PathExhausted"
	EventDelivered       EventType = "Delivered"
	EventFailed          EventType = "Failed"
)

// Event is one timestamped state-machine transition, emitted to the
// injected observer port. No wire format is mandated; attributes are plain
// key/value pairs.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Attrs     map[string]any
}

// Observer is the narrow port the engine emits events through. Observe is
// called synchronously on the run's goroutine and must not block.
type Observer interface {
	Observe(ev Event)
}

type ObserverFunc func(ev Event)

func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// NopObserver discards all events.
func NopObserver() Observer {
	return nopObserver{}
}

// MultiObserver fans an event out to several sinks in order.
func MultiObserver(obs ...Observer) Observer {
	return ObserverFunc(func(ev Event) {
		for _, o := range obs {
			o.Observe(ev)
		}
	})
}

// SlogObserver adapts events onto the ambient logger at debug level.
func SlogObserver(log *slog.Logger) Observer {
	return ObserverFunc(func(ev Event) {
		args := make([]any, 0, len(ev.Attrs)*2)
		for k, v := range ev.Attrs {
			args = append(args, k, v)
		}
		log.Debug(string(ev.Type), args...)
	})
}
