// Package config loads the service configuration from a YAML file.
//
// Config fields:
//   - Source.URL:                       raw payload URL (env DATA_SOURCE_URL)
//   - Source.Interval:                  time between fetches, default 1s (env DATA_SOURCE_INTERVAL, seconds)
//   - Source.Timeout:                   per-fetch timeout, default 10s
//   - Source.APIKeyEnv:                 environment variable holding an optional source API key
//   - Server.HTTPPort:                  WebSocket, admin API and /metrics port (default 8000)
//   - Server.AdminAuth:                 apikey | none for the admin API, key read from KeyEnv
//   - Broadcast.SuppressUntimedRepeats: mute repeated "still no time" updates (default true)
//   - Broadcast.Workers:                parallel deliveries per broadcast (default 8)
//   - Broadcast.SendBuffer:             per-subscriber queue depth (default 256)
//   - Log.Level:                        debug | info | warn | error
//
// Load(path) applies defaults, the file, then environment overrides, and
// validates the result. LoadEnvFile reads a .env file into the environment
// first. Watch(ctx, path, fn) reloads on file changes.
package config
