// Package grpcserver hosts the gRPC surface: the standard grpc.health.v1
// service backed by the runtime's storage health check, so orchestrators can
// probe the engine without speaking its REST API.
package grpcserver
