package auth

import "sync"

// dispatcher delivers change notifications in order on its own goroutine so
// that callbacks never run under the service lock.
type dispatcher struct {
	fn func(State[TokenSet])

	mu    sync.Mutex
	queue []State[TokenSet]

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func newDispatcher(fn func(State[TokenSet])) *dispatcher {
	d := &dispatcher{
		fn:   fn,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go d.run()
	return d
}

// enqueue never blocks.
func (d *dispatcher) enqueue(v State[TokenSet]) {
	if d.fn == nil {
		return
	}
	d.mu.Lock()
	d.queue = append(d.queue, v)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	defer close(d.done)
	for {
		select {
		case <-d.wake:
			d.drain()
		case <-d.stop:
			d.drain()
			return
		}
	}
}

func (d *dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		v := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.fn(v)
	}
}

// close delivers everything already queued and waits for the goroutine to exit.
// It must not be called from inside a callback.
func (d *dispatcher) close() {
	d.once.Do(func() { close(d.stop) })
	<-d.done
}
