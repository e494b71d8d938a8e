// Package timeouts defines the shared timeout constants for the governance
// binaries. Centralizing them keeps the HTTP surface, the embedded broker,
// and the MCP bridge from drifting apart on how long they wait.
package timeouts

import "time"

// ReadHeader limits how long the governance API waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the API server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// NATSReady caps the wait for the embedded broker to start accepting
// connections.
const NATSReady = 5 * time.Second

// APIRequest caps a single HTTP round trip from the MCP bridge to the
// governance API.
const APIRequest = 5 * time.Second
