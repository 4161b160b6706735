// Package grpc exposes the standard gRPC health service of the server.
package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-otp-keeper/internal/logger"
)

// ServiceName is the name the health service reports status for.
const ServiceName = "otp-keeper"

// Handler is the root gRPC transport handler. It owns the health server and
// reports SERVING from construction until Shutdown.
type Handler struct {
	health *health.Server

	logger *logger.Logger
}

// NewHandler returns a Handler whose health status is already SERVING, both
// for [ServiceName] and for the empty service name.
func NewHandler(logger *logger.Logger) *Handler {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		health: hs,
		logger: logger,
	}
}

// Register attaches the handler's services to server.
func (h *Handler) Register(server *grpc.Server) {
	healthpb.RegisterHealthServer(server, h.health)
}

// Shutdown switches every status to NOT_SERVING so that clients stop
// routing to this instance before the listener closes.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}
