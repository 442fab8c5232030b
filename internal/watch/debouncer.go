package watch

import (
	"sync"
	"time"
)

// DefaultDebounce is used when a non-positive delay is configured
const DefaultDebounce = 300 * time.Millisecond

// Debouncer collapses bursts of Schedule calls into one signal on C,
// delivered once no call has arrived for the debounce delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending int
	fired   chan struct{}
}

// NewDebouncer creates a debouncer with the given delay
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay: delay,
		fired: make(chan struct{}, 1),
	}
}

// Schedule records an event and restarts the quiet period
func (d *Debouncer) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// C delivers one value per quiet period. Signals not yet received coalesce.
func (d *Debouncer) C() <-chan struct{} {
	return d.fired
}

// Pending returns the number of events since the last signal
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush signals immediately without waiting for the quiet period
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.fire()
}

// Stop cancels a pending signal
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = 0
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.pending = 0
	d.mu.Unlock()

	select {
	case d.fired <- struct{}{}:
	default:
	}
}
