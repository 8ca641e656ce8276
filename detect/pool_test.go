package detect

import (
	"testing"

	smartcrop "github.com/vidflow/go-smartcrop"
	"gocv.io/x/gocv"
)

// poolStubDetector records whether Close was called
type poolStubDetector struct {
	closed bool
}

func (s *poolStubDetector) Detect(img gocv.Mat) ([]smartcrop.BoundingBox, error) {
	return nil, nil
}

func (s *poolStubDetector) Close() error {
	s.closed = true
	return nil
}

// TestPoolBorrowReturn tests detectors cycle through Get and Return
func TestPoolBorrowReturn(t *testing.T) {

	pool, err := NewPool(2, func() (smartcrop.Detector, error) {
		return &poolStubDetector{}, nil
	})

	if err != nil {
		t.Fatal(err)
	}

	defer pool.Close()

	a := pool.Get()
	b := pool.Get()

	if a == nil || b == nil {
		t.Fatal("pool returned nil detector")
	}

	pool.Return(a)
	pool.Return(b)

	if got := pool.Get(); got == nil {
		t.Error("returned detector not available again")
	}
}

// TestPoolReturnAfterClose tests a detector checked out across Close is
// closed on return instead of panicking the pool
func TestPoolReturnAfterClose(t *testing.T) {

	var made []*poolStubDetector

	pool, err := NewPool(2, func() (smartcrop.Detector, error) {
		d := &poolStubDetector{}
		made = append(made, d)
		return d, nil
	})

	if err != nil {
		t.Fatal(err)
	}

	borrowed := pool.Get()

	pool.Close()
	pool.Return(borrowed)

	for i, d := range made {
		if !d.closed {
			t.Errorf("detector %d not closed", i)
		}
	}
}
