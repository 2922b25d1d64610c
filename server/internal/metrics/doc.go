// Package metrics exposes bridge counters in the Prometheus text format.
//
// Metrics lives on its own registry so tests can create independent instances.
// It implements ntfy.Recorder and wraps the webhook handler to count responses.
package metrics
