package detect

import (
	"sync"

	smartcrop "github.com/vidflow/go-smartcrop"
)

// Pool holds multiple instances of the same detector so concurrent tracking
// sessions can each borrow one.  The gocv backed adapters hold native
// handles that must not be used from two sessions at once, model weights
// themselves are shared read only by the backends
type Pool struct {
	// pool of detectors
	detectors chan smartcrop.Detector
	// size of pool
	size  int
	close sync.Once
	// guards closed so a late Return does not send on the closed channel
	mu     sync.Mutex
	closed bool
}

// NewPool creates a detector pool of the given size using the factory to
// construct each instance
func NewPool(size int, factory func() (smartcrop.Detector, error)) (*Pool, error) {

	p := &Pool{
		detectors: make(chan smartcrop.Detector, size),
		size:      size,
	}

	for i := 0; i < size; i++ {
		d, err := factory()

		if err != nil {
			// close any instances that may have been created before
			// receiving the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(d)
	}

	return p, nil
}

// Get a detector from the pool, blocking until one is available
func (p *Pool) Get() smartcrop.Detector {
	return <-p.detectors
}

// Return a detector to the pool.  Returning to a closed pool closes the
// detector instead
func (p *Pool) Return(d smartcrop.Detector) {

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = d.Close()
		return
	}

	select {
	case p.detectors <- d:
	default:
		// pool is full
	}
}

// Close the pool and all detectors in it.  Detectors checked out at the time
// of the call are closed when they are returned
func (p *Pool) Close() {
	p.close.Do(func() {
		p.mu.Lock()
		p.closed = true

		// close channel
		close(p.detectors)
		p.mu.Unlock()

		// close all detectors still in the pool
		for next := range p.detectors {
			_ = next.Close()
		}
	})
}
