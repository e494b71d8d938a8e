// Package branding centralizes the product name used across surfaces.
package branding

// AppName is the canonical product name shown to operators and MCP clients.
const AppName = "Signoria"
