// Package api hosts the HTTP server, middleware, and REST handlers for operator
// access. Notable routes:
//   - GET /healthz / readyz for liveness and readiness probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /api/sites, /api/sites/check, /api/sites/remove for managing
//     monitored sites.
//   - GET /api/sites and /api/sites/history for snapshots and check history.
//   - GET /api/stats for per-site event aggregates via the StatsProvider
//     interface.
package api
