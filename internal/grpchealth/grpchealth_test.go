package grpchealth_test

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/BrandonDHaskell/accesshub/internal/grpchealth"
)

func dial(t *testing.T, srv *grpchealth.Server) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Stop(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func status(t *testing.T, c healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("check %q: %v", service, err)
	}
	return resp.GetStatus()
}

func TestHealth_ServingWithoutCheck(t *testing.T) {
	srv := grpchealth.New(grpchealth.Config{}, log.New(io.Discard, "", 0))
	c := dial(t, srv)

	if got := status(t, c, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("overall = %v", got)
	}
	if got := status(t, c, grpchealth.ServiceName); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("%s = %v", grpchealth.ServiceName, got)
	}
}

func TestHealth_ProbeFlipsStatus(t *testing.T) {
	var failing atomic.Bool
	srv := grpchealth.New(grpchealth.Config{
		Check: func(context.Context) error {
			if failing.Load() {
				return errors.New("db down")
			}
			return nil
		},
		Interval: time.Hour,
	}, log.New(io.Discard, "", 0))
	c := dial(t, srv)

	failing.Store(true)
	srv.Probe(context.Background())
	if got := status(t, c, grpchealth.ServiceName); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING, got %v", got)
	}

	failing.Store(false)
	srv.Probe(context.Background())
	if got := status(t, c, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", got)
	}
}

func TestHealth_UnknownService(t *testing.T) {
	srv := grpchealth.New(grpchealth.Config{}, log.New(io.Discard, "", 0))
	c := dial(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: "nope"}); err == nil {
		t.Fatal("expected NotFound for unknown service")
	}
}

func TestStop_Idempotent(t *testing.T) {
	srv := grpchealth.New(grpchealth.Config{}, log.New(io.Discard, "", 0))
	ctx := context.Background()
	srv.Stop(ctx)
	srv.Stop(ctx)
}
