// Package engine exposes the engine's application service over gRPC.
//
// The service is described by a hand-written grpc.ServiceDesc whose unary
// methods carry google.protobuf.Struct payloads. Each payload is the JSON
// form of the matching service request or response type, so any gRPC
// client that can build a Struct can call the engine without generated
// stubs. Client wraps the same methods behind the service's Go signatures.
package engine
