// Package retry runs store operations until they succeed, waiting a fixed
// interval between attempts while the store is still coming up. Fatal
// errors are never retried.
package retry

import (
	"context"
	"time"
)

// Unlimited makes an Executor retry transient errors indefinitely.
const Unlimited = -1

// Executor runs an operation, classifying each failure and sleeping a
// fixed delay before the next attempt.
type Executor struct {
	classifier  Classifier
	delay       time.Duration
	maxAttempts int
	onRetry     func(attempt int, err error)
}

// NewExecutor creates an Executor with the given fixed delay between
// attempts. maxAttempts counts retries after the initial attempt;
// Unlimited retries forever.
func NewExecutor(classifier Classifier, delay time.Duration, maxAttempts int) *Executor {
	return &Executor{
		classifier:  classifier,
		delay:       delay,
		maxAttempts: maxAttempts,
	}
}

// WithOnRetry returns a copy of the Executor that calls the callback
// before each retry attempt. The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs the operation until it succeeds, fails fatally, exhausts
// maxAttempts, or the context is cancelled.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	if lastErr == nil {
		return nil
	}
	if !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	for attempt := 1; e.maxAttempts < 0 || attempt <= e.maxAttempts; attempt++ {
		if e.onRetry != nil {
			e.onRetry(attempt, lastErr)
		}

		timer := time.NewTimer(e.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}
		if !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
