package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"alugaai-backend/internal/api/grpc/interceptor"
	"alugaai-backend/internal/events"
	"alugaai-backend/internal/security"
	"alugaai-backend/internal/service"
)

type Services struct {
	Auth    service.AuthService
	Catalog service.CatalogService
	Rentals service.RentalService
	Feed    events.Subscriber
}

// NewServer registers the aluga.ai services plus health and reflection.
// Interceptors run metrics first, then error mapping, then auth.
func NewServer(svcs Services, verifier security.Verifier, obs interceptor.RequestObserver, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	auth := interceptor.NewAuthInterceptor(verifier)

	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			interceptor.UnaryMetrics(obs),
			interceptor.UnaryErrors(),
			auth.Unary(),
		),
		grpc.ChainStreamInterceptor(
			interceptor.StreamMetrics(obs),
			interceptor.StreamErrors(),
			auth.Stream(),
		),
	)
	srv := grpc.NewServer(opts...)

	srv.RegisterService(&AuthServiceDesc, NewAuthHandler(svcs.Auth))
	srv.RegisterService(&CatalogServiceDesc, NewCatalogHandler(svcs.Catalog))
	srv.RegisterService(&RentalServiceDesc, NewRentalHandler(svcs.Rentals, svcs.Feed))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	for _, name := range []string{AuthServiceName, CatalogServiceName, RentalServiceName} {
		healthSrv.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	reflection.Register(srv)

	return srv, healthSrv
}
