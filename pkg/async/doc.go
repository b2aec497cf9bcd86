// Package async runs error-returning work in the background and lets callers await it.
//
// ExecFuture is the handle returned by Exec. It can be awaited indefinitely, with a
// timeout, or bounded by a context, and polled without blocking.
//
//	future := async.Exec(ctx, provider, func(ctx context.Context, p session.Provider) error {
//		return container.Login(ctx, p)
//	})
//
//	// render a spinner while the login is pending
//	if !future.IsComplete() {
//		...
//	}
//
//	if err := future.AwaitWithTimeout(5 * time.Second); errors.Is(err, async.ErrTimeout) {
//		log.Println("login still pending")
//	}
//
// # Error Handling
//
//   - ErrTimeout: returned when AwaitWithTimeout exceeds its duration
//
// AwaitContext returns the context error when the awaiting context ends first; the
// background work itself keeps running until its own context is done.
package async
