// Package timeouts defines shared timeout constants used across commands.
package timeouts

import "time"

// Query caps a single report query against the reporting database.
const Query = 15 * time.Second

// Report caps a complete report build, which may issue several queries.
const Report = 30 * time.Second

// Ping caps a storage health probe.
const Ping = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 10 * time.Second
