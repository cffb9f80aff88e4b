// Package retry re-runs host filesystem calls that fail with a transient
// error, waiting an exponentially growing delay between attempts.
//
// # Example Usage
//
//	exec := retry.NewExecutor(retry.HostErrors, retry.NewBackoff(3))
//	err := exec.Do(func() error {
//	    return os.Rename(from, to)
//	})
//
// # Error Classification
//
// A Classifier decides which errors are worth another attempt. HostErrors
// accepts interrupted system calls, EAGAIN and EBUSY; anything else,
// including a missing file or a permission error, fails at once.
//
// # Thread Safety
//
// Executor and Backoff are safe for concurrent use. WithOnRetry returns a
// copy rather than changing the receiver.
package retry
