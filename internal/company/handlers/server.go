// Package handlers provides the HTTP and gRPC server implementations for
// serving the CompanyService, bridging the transport layer and business logic.
//
// REST routes are registered on a grpc-gateway ServeMux; its /health endpoint
// is answered by the gRPC health service over an in-process connection.
package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gartstein/companies/internal/company/metrics"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/test/bufconn"
)

const inprocBufSize = 1 << 20

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	health       *health.Server
	httpServer   *http.Server
	inproc       *bufconn.Listener
	conn         *grpc.ClientConn
	logger       *zap.Logger
	metrics      *metrics.Metrics
	grpcEndpoint string
	httpEndpoint string
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
// The gRPC server carries the health and reflection services.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	m *metrics.Metrics,
	grpcOpts ...grpc.ServerOption,
) *Server {
	grpcServer := grpc.NewServer(grpcOpts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)

	return &Server{
		grpcServer:   grpcServer,
		health:       hs,
		httpServer:   &http.Server{ReadHeaderTimeout: 10 * time.Second},
		inproc:       bufconn.Listen(inprocBufSize),
		logger:       logger.Named("server"),
		metrics:      m,
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
}

// RegisterHTTPGateway builds the HTTP handler: the REST routes of h, the
// health endpoint, metrics and service info, wrapped in CORS.
func (s *Server) RegisterHTTPGateway(h *CompanyHandler, corsOrigins []string) error {
	go func() {
		if err := s.grpcServer.Serve(s.inproc); err != nil {
			s.logger.Error("in-process gRPC serve error", zap.Error(err))
		}
	}()

	conn, err := grpc.NewClient("passthrough:///inproc",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return s.inproc.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("failed to dial in-process gRPC: %w", err)
	}
	s.conn = conn

	gwmux := runtime.NewServeMux(
		runtime.WithHealthEndpointAt(healthpb.NewHealthClient(conn), "/health"),
	)

	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/api/companies", h.ListCompanies},
		{http.MethodPost, "/api/companies", h.CreateCompany},
		{http.MethodGet, "/api/companies/{id}", h.GetCompany},
		{http.MethodPut, "/api/companies/{id}", h.UpdateCompany},
		{http.MethodDelete, "/api/companies/{id}", h.DeleteCompany},
		{http.MethodGet, "/api/options", h.Options},
	}
	for _, rt := range routes {
		if err := gwmux.HandlePath(rt.method, rt.pattern, s.wrap(rt.pattern, rt.handler)); err != nil {
			return fmt.Errorf("failed to register %s %s: %w", rt.method, rt.pattern, err)
		}
	}

	root := http.NewServeMux()
	root.Handle("/api/", gwmux)
	root.Handle("/health", instrument("/health", s.logger, s.metrics, gwmux))
	root.Handle("GET /metrics", s.metrics.Handler())
	root.Handle("GET /{$}", instrument("/", s.logger, s.metrics, http.HandlerFunc(h.Info)))

	s.httpServer.Handler = cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
	}).Handler(root)
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

func (s *Server) wrap(route string, fn runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		instrument(route, s.logger, s.metrics, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, pathParams)
		})).ServeHTTP(w, r)
	}
}

// Handler returns the HTTP handler built by RegisterHTTPGateway.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// SetServing flips the overall health status reported by /health.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// MonitorHealth pings p every interval and reports the outcome through the
// health service and metrics until ctx is done.
func (s *Server) MonitorHealth(ctx context.Context, p Pinger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		err := p.Ping(pingCtx)
		cancel()

		up := err == nil
		if up != healthy {
			if up {
				s.logger.Info("Database reachable again")
			} else {
				s.logger.Warn("Database ping failed", zap.Error(err))
			}
			healthy = up
		}
		s.SetServing(up)
		s.metrics.SetDatabaseUp(up)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	// Start gRPC Server
	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen error: %w", err)
			return
		}
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	// Start HTTP Server
	go func() {
		defer wg.Done()
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down both gRPC and HTTP servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.grpcServer.GracefulStop()

	s.logger.Info("Servers stopped")
}
