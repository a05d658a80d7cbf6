// Package resilience provides retry with backoff.
//
// The supervisor uses it to start the worker process: a failure to exec is
// retried with exponential backoff instead of spinning.
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  5,
//	    InitialDelay: 100 * time.Millisecond,
//	    MaxDelay:     5 * time.Second,
//	})
//
//	child, err := resilience.Do(ctx, retry, func(ctx context.Context) (*Child, error) {
//	    return spawner.Spawn(ctx)
//	})
package resilience
