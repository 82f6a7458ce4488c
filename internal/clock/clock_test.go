package clock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonotonic_NonDecreasing(t *testing.T) {
	c := NewMonotonic()

	prev := int64(-1)
	for i := 0; i < 10000; i++ {
		stamp := c.Now()
		assert.GreaterOrEqual(t, stamp, prev)
		prev = stamp
	}
}

func TestMonotonic_NonDecreasingAcrossGoroutines(t *testing.T) {
	c := NewMonotonic()

	const workers = 8
	const perWorker = 5000

	var wg sync.WaitGroup
	results := make([][]int64, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			stamps := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				stamps = append(stamps, c.Now())
			}
			results[w] = stamps
		}(w)
	}
	wg.Wait()

	// Each goroutine must observe its own stamps in non-decreasing order.
	for w, stamps := range results {
		for i := 1; i < len(stamps); i++ {
			assert.GreaterOrEqual(t, stamps[i], stamps[i-1], "worker %d regressed at %d", w, i)
		}
	}
}
