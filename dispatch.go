package internetpulse

import "sync"

// dispatcher runs user callbacks in arrival order on its own goroutine so
// the monitor loop never waits on them. The queue is unbounded: a callback
// that blocks on the loop (Toggle, for instance) cannot stall the loop.
type dispatcher struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
	done  chan struct{}
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (d *dispatcher) enqueue(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// run executes queued callbacks until stop is closed, then drains what is
// left and closes done.
func (d *dispatcher) run(stop <-chan struct{}) {
	defer close(d.done)
	for {
		select {
		case <-d.wake:
			d.drain()
		case <-stop:
			d.drain()
			return
		}
	}
}

func (d *dispatcher) drain() {
	for {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		d.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}
