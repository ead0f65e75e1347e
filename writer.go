package folio

import (
	"context"
	"errors"
	"sync"
)

// errWriterClosed is returned for mutations submitted after Close.
var errWriterClosed = errors.New("writer closed")

type writeJob struct {
	fn   func() error
	done chan error
}

// serialWriter runs every mutation of one resource on a single goroutine, so
// read-modify-write cycles on a shared document never interleave.
type serialWriter struct {
	jobs      chan writeJob
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newSerialWriter() *serialWriter {
	w := &serialWriter{
		jobs: make(chan writeJob),
		quit: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

func (w *serialWriter) loop() {
	defer w.wg.Done()
	for {
		select {
		case job := <-w.jobs:
			job.done <- job.fn()
		case <-w.quit:
			return
		}
	}
}

// Do queues fn and waits for its result. If ctx ends while fn is still
// queued, fn never runs; once started it always runs to completion.
func (w *serialWriter) Do(ctx context.Context, fn func() error) error {
	job := writeJob{fn: fn, done: make(chan error, 1)}
	select {
	case w.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.quit:
		return errWriterClosed
	}
	return <-job.done
}

// Close stops the writer after the running job, if any, finishes.
func (w *serialWriter) Close() {
	w.closeOnce.Do(func() { close(w.quit) })
	w.wg.Wait()
}
