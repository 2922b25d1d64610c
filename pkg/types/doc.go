// Package types defines the Alertmanager webhook payload as decoded by the
// bridge, and the notification tuple the bridge produces from it.
// These are the canonical in-memory representations shared by the translator,
// the dispatcher and the HTTP layer.
package types
