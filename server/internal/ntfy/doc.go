// Package ntfy turns Alertmanager webhook events into ntfy push notifications.
//
// Translate is a pure function mapping one alert's status, labels and
// annotations to a (title, body, tags, priority) tuple. Dispatcher splits an
// event into one sub-event per alert, translates each, POSTs it to the
// configured ntfy topic and folds the per-alert HTTP outcomes into a single
// result for the webhook caller.
package ntfy
