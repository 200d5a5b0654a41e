// Package service wires MCP transports to the engine.
//
// It is the transport adapter layer: the package knows how to run MCP over
// stdio or streamable HTTP, how to reach the engine in process or over gRPC,
// and delegates tool semantics to the domain handlers.
package service
