// Package healthcheck exposes liveness and readiness probes for the admin
// listener. Readiness flips on once the public server is started and off as
// soon as graceful shutdown begins.
package healthcheck
