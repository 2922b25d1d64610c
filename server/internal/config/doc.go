// Package config loads the bridge configuration.
//
// Config fields:
//   - ListenAddr        — webhook listen address (default ":5001")
//   - Ntfy.URL          — ntfy base URL (default "https://ntfy.sh"; env NTFY_URL)
//   - Ntfy.Topic        — ntfy topic (default "alerts"; env NTFY_TOPIC)
//   - Ntfy.Username     — Basic auth user (env NTFY_USER)
//   - Ntfy.PasswordEnv  — env var holding the Basic auth password (env NTFY_PASS wins)
//   - Ntfy.Timeout      — per-request publish timeout (default 10s)
//   - Auth.Mode         — "bearer" or "none" for inbound webhook calls
//   - Auth.TokenEnv     — env var holding the expected bearer token
//
// Load(path) applies defaults, then the optional YAML file, then the NTFY_*
// environment, then validates. The result is immutable for the process lifetime.
package config
