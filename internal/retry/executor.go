package retry

import (
	"time"
)

// Executor runs an operation until it succeeds, fails fatally, or runs out
// of attempts.
type Executor struct {
	classifier Classifier
	backoff    *Backoff
	onRetry    func(attempt int, err error, delay time.Duration)
	sleep      func(time.Duration)
}

// NewExecutor panics if classifier or backoff is nil.
func NewExecutor(classifier Classifier, backoff *Backoff) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if backoff == nil {
		panic("backoff cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		backoff:    backoff,
		sleep:      time.Sleep,
	}
}

// None returns an Executor that never retries.
func None() *Executor {
	return NewExecutor(Never, NewBackoff(0))
}

// WithOnRetry returns a copy of e that calls fn before each wait.
func (e *Executor) WithOnRetry(fn func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = fn
	return &clone
}

// WithSleep returns a copy of e that waits with fn. Tests use it to avoid
// real delays.
func (e *Executor) WithSleep(fn func(time.Duration)) *Executor {
	clone := *e
	clone.sleep = fn
	return &clone
}

// Do calls op and retries transient failures. It returns nil or the last
// error seen.
func (e *Executor) Do(op func() error) error {
	err := op()
	if err == nil || !e.classifier(err) {
		return err
	}

	limit := e.backoff.MaxAttempts()
	for attempt := 0; limit < 0 || attempt < limit; attempt++ {
		delay := e.backoff.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}
		e.sleep(delay)

		err = op()
		if err == nil || !e.classifier(err) {
			return err
		}
	}
	return err
}
