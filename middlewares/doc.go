// Package middlewares provides the net/http middleware stack of the service:
// request IDs, panic recovery, request timeouts, CORS for the browser front
// end and the session load/commit cycle.
//
//	r := chi.NewRouter()
//	r.Use(
//		middlewares.RequestID(),
//		middlewares.Recover(log),
//		middlewares.Timeout(30*time.Second, log),
//		middlewares.Session(sessions, log),
//	)
//
// Session commits through [ResponseWriter] hooks, so the cookie is set before
// the first byte of the response regardless of how the handler writes it.
package middlewares
