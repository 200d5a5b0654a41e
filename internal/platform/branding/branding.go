// Package branding holds product naming shared by the binaries.
package branding

// AppName is the product name shown to MCP clients and in logs.
const AppName = "Wrathforge"
