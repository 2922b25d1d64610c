// Package api implements the HTTP surface of the bridge.
//
// New(dispatcher, opts) returns an http.Handler that serves:
//
//	POST /         — Alertmanager webhook; 200 "ok" if every alert was
//	                 delivered, 500 "Failed" otherwise
//	GET  /healthz  — liveness probe, {"status":"ok"}
//	GET  /metrics  — Prometheus exposition (when Options.Metrics is set)
//
// The webhook route answers 405 for other methods and 400 when the body is
// not a JSON alert event. Every webhook request is tagged with a request ID,
// echoed in the X-Request-Id response header and attached to its log lines.
// No external HTTP framework is used.
package api
