// Package editor hosts the single-document editing session: the event bus,
// selection resolver, highlight overlay engine, and change/save pipeline.
package editor

import (
	"sync"
	"time"
)

// EventName identifies a bus topic.
type EventName string

const (
	EventSelectionChanged EventName = "selectionChanged"
	EventDocumentMutated  EventName = "documentMutated"
	EventKeyPressed       EventName = "keyPressed"
)

// Event is delivered to every handler subscribed to its topic.
type Event struct {
	Name EventName
	At   time.Time
	Data any
}

type subscription struct {
	name    string
	handler func(Event)
}

// Bus dispatches events synchronously to named handlers in subscribe order.
// Handlers are identified by name so they can be replaced or removed.
type Bus struct {
	mu   sync.Mutex
	subs map[EventName][]subscription
}

func NewBus() *Bus {
	return &Bus{subs: make(map[EventName][]subscription)}
}

// Subscribe registers handler under name for the given topic. Subscribing
// an existing name replaces the previous handler in place, keeping its
// dispatch position.
func (b *Bus) Subscribe(topic EventName, name string, handler func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs[topic] {
		if s.name == name {
			b.subs[topic][i].handler = handler
			return
		}
	}
	b.subs[topic] = append(b.subs[topic], subscription{name: name, handler: handler})
}

// Unsubscribe removes the named handler from the topic.
func (b *Bus) Unsubscribe(topic EventName, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, s := range subs {
		if s.name == name {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to all current subscribers of its topic,
// synchronously, in subscribe order.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	b.mu.Lock()
	subs := make([]subscription, len(b.subs[ev.Name]))
	copy(subs, b.subs[ev.Name])
	b.mu.Unlock()
	for _, s := range subs {
		s.handler(ev)
	}
}
