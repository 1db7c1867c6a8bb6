// Package main hosts the site monitor service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes health, metrics, and site management endpoints. Requests are validated
//     and routed to the registry, which owns all monitored-site state.
//   - Registry: internal/registry serializes operations per URL while allowing different URLs to proceed
//     concurrently. Every successful check appends one history record and updates the stored snapshot atomically;
//     a failed fetch leaves state untouched.
//   - Fetch pipeline: the Colly-based fetcher retrieves raw HTML, optionally through a SOCKS5 proxy when a site
//     was registered with proxying enabled. Extraction (goquery) and diffing (go-diff) run on the raw bytes.
//   - Events & metrics: registry operations emit events into a buffered Hub which batches them out to sinks
//     (structured zap log lines and Prometheus counters/histograms). HTTP metrics are exported via middleware
//     and the /metrics handler.
//   - Configuration & plumbing: Viper populates config from env/files; zap provides structured logging. State is
//     in-memory only and lost on restart.
//
// Operational notes:
//   - Concurrency model: one mutex per monitored URL held across fetch and commit; readers never block on a slow
//     fetch. Shutdown drains the event hub after the HTTP server stops.
//   - Proxy: the proxy address and timeout are frozen into a site's fetch config at registration time.
//
// Quick checklist:
//   - Configure env vars: MONITOR_SERVER_PORT, MONITOR_FETCH_TIMEOUT_SECONDS, MONITOR_FETCH_PROXY_ADDRESS,
//     MONITOR_AUTH_ENABLED/MONITOR_AUTH_API_KEY, MONITOR_LOGGING_DEVELOPMENT.
//   - Run locally: go run ./cmd/monitor -config config.yaml (or rely solely on env overrides).
package main
