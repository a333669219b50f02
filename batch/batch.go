// Package batch runs a per-file operation over many files.
package batch

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Result is the outcome of one file. Value is whatever the operation
// returned; it is the zero value when Err is set.
type Result[T any] struct {
	Path  string
	Value T
	Err   error
}

// Run calls fn once per path on at most workers goroutines and returns the
// results in path order. A failing or panicking call only affects its own
// result. workers below 1 means one per CPU.
func Run[T any](paths []string, workers int, fn func(path string) (T, error)) []Result[T] {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	results := make([]Result[T], len(paths))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, path string) {
			defer func() {
				if r := recover(); r != nil {
					results[idx] = Result[T]{Path: path, Err: errors.Errorf("panic: %v", r)}
				}
				<-sem
				wg.Done()
			}()
			v, err := fn(path)
			if err != nil {
				logrus.Debugf("%s: %v", path, err)
				var zero T
				v = zero
			}
			results[idx] = Result[T]{Path: path, Value: v, Err: err}
		}(i, path)
	}
	wg.Wait()
	return results
}

// Failed returns the results that carry an error.
func Failed[T any](results []Result[T]) []Result[T] {
	var failed []Result[T]
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
