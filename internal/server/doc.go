// Package server runs the HTTP and gRPC transports until a stop signal and
// then shuts them down gracefully.
package server
