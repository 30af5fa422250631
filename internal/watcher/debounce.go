package watcher

import (
	"sync"
	"time"
)

// debouncer coalesces events per path and hands each burst to fire once
// the path has been quiet for delay.
type debouncer struct {
	delay time.Duration
	fire  func(Event)

	mu      sync.Mutex
	pending map[string]*pendingEvent
	stopped bool
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

func newDebouncer(delay time.Duration, fire func(Event)) *debouncer {
	return &debouncer{
		delay:   delay,
		fire:    fire,
		pending: make(map[string]*pendingEvent),
	}
}

// add schedules ev, merging it into a pending event for the same path.
func (d *debouncer) add(ev Event) {
	if d.delay <= 0 {
		d.fire(ev)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if p, ok := d.pending[ev.Path]; ok {
		p.event.Op |= ev.Op
		p.event.Timestamp = ev.Timestamp
		p.timer.Reset(d.delay)
		return
	}

	path := ev.Path
	d.pending[path] = &pendingEvent{
		event: ev,
		timer: time.AfterFunc(d.delay, func() { d.fireOne(path) }),
	}
}

func (d *debouncer) fireOne(path string) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if !ok || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	d.mu.Unlock()

	d.fire(p.event)
}

// flush fires every pending event now.
func (d *debouncer) flush() {
	d.mu.Lock()
	events := make([]Event, 0, len(d.pending))
	for path, p := range d.pending {
		p.timer.Stop()
		events = append(events, p.event)
		delete(d.pending, path)
	}
	d.mu.Unlock()

	for _, ev := range events {
		d.fire(ev)
	}
}

// stop drops pending events. Timers already running find nothing to fire.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}

func (d *debouncer) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
