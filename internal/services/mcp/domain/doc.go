// Package domain maps MCP tool calls onto engine operations.
//
// Each tool has an input and a result type shaped for MCP clients (snake_case
// fields with schema descriptions) and a handler that calls the Engine, so
// the same tools run against an in-process engine or a remote one over
// gRPC. Nested engine payloads such as property graphs and computation
// trails are passed through as JSON objects.
package domain
