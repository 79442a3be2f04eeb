// Package async runs independent calls concurrently and gathers their results
// in call order.
//
//	users := make([]*async.Future[User], len(ids))
//	for i, id := range ids {
//		users[i] = async.Async(ctx, id, store.User)
//	}
//	list, err := async.WaitAll(users...)
//
// WaitAll returns the first error by position, not by completion time, so two
// failing calls always report the same error. A future whose context is already
// done returns ctx.Err() without running its function.
package async
