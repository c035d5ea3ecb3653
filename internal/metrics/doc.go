// Package metrics exposes Prometheus collectors for login outcomes, HTTP
// traffic and the PostgreSQL pool.
package metrics
