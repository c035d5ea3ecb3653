// Package job runs background tasks on River, a Postgres-backed queue.
//
// A task is any type with Name() and Handle(ctx, P) methods; the payload is
// stored as JSON and decoded into P when the job runs. Failed jobs are retried
// with backoff until their attempt budget is spent.
//
//	manager, err := job.NewManager(pool,
//	    job.WithTask[auth.RevokePayload](auth.NewRevokeTask(backend, log)),
//	    job.WithLogger(log),
//	)
//	...
//	err = manager.Enqueue(ctx, auth.RevokeTaskName, auth.RevokePayload{UserID: id},
//	    job.MaxAttempts(5))
//
// River keeps its own tables; apply them with Migrate before Start.
package job
