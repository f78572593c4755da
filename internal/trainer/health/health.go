// Package health serves the standard gRPC health checking protocol so
// probes and the atx client can tell whether the trainer accepts jobs.
package health

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/ehsaniara/annotrain/pkg/logger"
)

// ServiceName is the service whose status follows the orchestrator.
const ServiceName = "annotrain.Trainer"

// Server is a gRPC server carrying only the health service.
type Server struct {
	grpc   *grpc.Server
	health *grpchealth.Server
	lis    net.Listener
	logger *logger.Logger
}

// Start listens on address and serves health checks in the background.
// Both the overall status and ServiceName start as SERVING.
func Start(address string) (*Server, error) {
	log := logger.WithField("component", "health-server")

	lis, err := net.Listen("tcp", address)
	if err != nil {
		log.Error("failed to create listener", "address", address, "error", err)
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{Time: 30 * time.Second, Timeout: 10 * time.Second}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{MinTime: 15 * time.Second, PermitWithoutStream: true}),
	)
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	s := &Server{grpc: grpcServer, health: hs, lis: lis, logger: log}
	s.SetServing(true)

	go func() {
		log.Info("starting health server", "address", lis.Addr().String())
		if serveErr := grpcServer.Serve(lis); serveErr != nil {
			log.Error("health server stopped with error", "error", serveErr)
		} else {
			log.Info("health server stopped gracefully")
		}
	}()

	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.lis.Addr().String()
}

// SetServing flips the reported status of the server and of ServiceName.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Stop reports NOT_SERVING to watchers and stops the server.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// Check asks the health service at address for the status of service.
func Check(ctx context.Context, address, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("connect to %s: %w", address, err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check: %w", err)
	}
	return resp.GetStatus(), nil
}
