// Package service wires the MCP stdio transport to governance tool handlers.
//
// It is the transport adapter layer: the package knows how to run MCP over
// stdio and delegates business meaning to domain handlers backed by the
// governance HTTP API.
package service
