// Package domain translates MCP tool calls into governance API requests.
//
// The package is intentionally explicit about that mapping:
// - validate tool arguments before any request leaves the process,
// - route calls to the correct governance HTTP endpoint with the operator
//   grant attached for mutations,
// - and surface structured outputs that MCP clients can render.
//
// This keeps bridge behavior auditable from protocol message -> API request
// -> governance decision.
package domain
