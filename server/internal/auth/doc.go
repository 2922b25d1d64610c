// Package auth provides authentication middleware for the webhook endpoint.
//
// Middleware(mode, token) wraps an http.Handler and validates the bearer token
// Alertmanager sends when its webhook_config carries an authorization block.
//
// When mode != "bearer" or token == "", all requests pass through (the default,
// matching an Alertmanager receiver without credentials). When the token is
// incorrect or absent the middleware answers 401 immediately.
package auth
