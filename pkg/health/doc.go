// Package health serves liveness and readiness probes.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs the configured [Checks] (postgres and redis pings)
// concurrently and answers 503 if any of them fails. Responses are plain text
// unless the client asks for JSON with ?format=json or an Accept header:
//
//	{"status":"unhealthy","checks":{"postgres":{"status":"healthy"},"redis":{"status":"unhealthy","error":"..."}}}
package health
