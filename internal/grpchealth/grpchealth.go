// Package grpchealth serves the standard grpc.health.v1 service so load
// balancers and orchestrators can probe the server without speaking HTTP.
package grpchealth

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health entry tracking the management API.  The empty
// name reports overall server health.
const ServiceName = "accesshub.v1.AccessHub"

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *log.Logger

	check    func(ctx context.Context) error
	interval time.Duration

	stopOnce sync.Once
	done     chan struct{}
}

type Config struct {
	// Check, if set, is polled every Interval and drives the serving
	// status of both the overall and the ServiceName entries.
	Check    func(ctx context.Context) error
	Interval time.Duration
}

func New(cfg Config, logger *log.Logger) *Server {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	s := &Server{
		grpc:     gs,
		health:   hs,
		logger:   logger,
		check:    cfg.Check,
		interval: cfg.Interval,
		done:     make(chan struct{}),
	}
	s.setServing(true)
	return s
}

func (s *Server) setServing(ok bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Probe runs the configured check once and publishes the result.
func (s *Server) Probe(ctx context.Context) {
	if s.check == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	err := s.check(ctx)
	if err != nil {
		s.logger.Printf("health check failed: %v", err)
	}
	s.setServing(err == nil)
}

// Serve blocks serving lis until Stop.  Checks run every interval; call
// Probe first for an immediate status.
func (s *Server) Serve(lis net.Listener) error {
	go s.watch()
	err := s.grpc.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

func (s *Server) watch() {
	if s.check == nil {
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			s.Probe(context.Background())
		}
	}
}

// Stop marks every entry NOT_SERVING and drains in-flight RPCs until ctx
// expires, then forces the listener closed.
func (s *Server) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		close(s.done)
		s.health.Shutdown()

		stopped := make(chan struct{})
		go func() {
			s.grpc.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.grpc.Stop()
		}
	})
}
