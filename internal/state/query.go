package state

import "time"

// Status is the phase of a cached query.
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Query is the observable state of one polled query.
//
// Data and FetchedAt survive later loading and error phases so the UI can
// keep showing the last good value; HasData tells whether they are set.
// Err holds the reason of the most recent exhausted cycle and is cleared by
// the next success.
type Query[T any] struct {
	Status    Status
	Data      T
	HasData   bool
	FetchedAt time.Time
	Err       error
	Failures  int // consecutive cycles that ended in error
}

// Loading returns q moved into the loading phase.
func (q Query[T]) Loading() Query[T] {
	q.Status = StatusLoading
	return q
}

// Succeed returns q holding fresh data.
func (q Query[T]) Succeed(data T, at time.Time) Query[T] {
	q.Status = StatusSuccess
	q.Data = data
	q.HasData = true
	q.FetchedAt = at
	q.Err = nil
	q.Failures = 0
	return q
}

// Fail returns q in the error phase with err as the reason.
func (q Query[T]) Fail(err error) Query[T] {
	q.Status = StatusError
	q.Err = err
	q.Failures++
	return q
}

// IsOffline returns true when the query has failed for multiple cycles.
func (q Query[T]) IsOffline() bool {
	return q.Failures >= 2
}
