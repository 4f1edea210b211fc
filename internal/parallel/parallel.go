// Package parallel provides the row-band fan-out used by the data-parallel
// image passes. Workers own disjoint contiguous row ranges and never write
// to each other's rows.
package parallel

import (
	"runtime"
	"sync"
)

// Split divides n rows into at most workers contiguous [start, end) bands.
// workers <= 0 selects GOMAXPROCS. The band list is deterministic for a
// given (n, workers) pair.
func Split(n, workers int) [][2]int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		return nil
	}
	per := (n + workers - 1) / workers
	var bands [][2]int
	for start := 0; start < n; start += per {
		end := start + per
		if end > n {
			end = n
		}
		bands = append(bands, [2]int{start, end})
	}
	return bands
}

// Rows runs fn over row bands, one goroutine per band, and waits for all
// of them. fn receives a half-open [start, end) row range.
func Rows(n, workers int, fn func(start, end int)) {
	bands := Split(n, workers)
	if len(bands) == 1 {
		fn(bands[0][0], bands[0][1])
		return
	}
	var wg sync.WaitGroup
	for _, b := range bands {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(b[0], b[1])
	}
	wg.Wait()
}
