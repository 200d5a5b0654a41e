// Package app wires the engine binary: it opens storage, builds the
// application service and serves it over gRPC with health reporting.
package app
