// Package http implements the REST transport of the server.
//
// It wires chi routes to the service layer and carries the request-level
// middleware: trace ids, access logging, panic recovery, timeouts,
// compression, CORS, bearer-token authentication and role permissions.
package http
