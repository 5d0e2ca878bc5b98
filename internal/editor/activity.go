package editor

import (
	"sync"
	"time"
)

// ActivityEvent records one user-visible action in the session: a mutation,
// a save transition, or a highlight change.
type ActivityEvent struct {
	Kind   string
	At     time.Time
	Detail map[string]string
}

// ActivityFeed fans activity events out to named subscribers. It is
// injected into the session and scoped to it; subscribers detach with
// Unsubscribe when their hosting view goes away.
type ActivityFeed struct {
	mu   sync.Mutex
	subs map[string]func(ActivityEvent)
}

func NewActivityFeed() *ActivityFeed {
	return &ActivityFeed{subs: make(map[string]func(ActivityEvent))}
}

func (f *ActivityFeed) Subscribe(name string, fn func(ActivityEvent)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[name] = fn
}

func (f *ActivityFeed) Unsubscribe(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, name)
}

func (f *ActivityFeed) Publish(ev ActivityEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	f.mu.Lock()
	subs := make([]func(ActivityEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}
