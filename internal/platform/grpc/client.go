// Package grpc holds the gRPC plumbing shared by wrathforge binaries:
// client construction with a health gate and the health server setup.
package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ConnectStage describes where a connection attempt failed.
type ConnectStage string

const (
	// ConnectStageClient indicates the client could not be created.
	ConnectStageClient ConnectStage = "client"
	// ConnectStageHealth indicates the health check never reported SERVING.
	ConnectStageHealth ConnectStage = "health"
)

// ConnectError wraps connection failures with the stage that failed.
type ConnectError struct {
	Stage ConnectStage
	Err   error
}

func (e *ConnectError) Error() string {
	if e == nil {
		return "gRPC connect error"
	}
	return fmt.Sprintf("gRPC %s error: %v", e.Stage, e.Err)
}

func (e *ConnectError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ClientOptions returns the dial options for plaintext clients on a
// trusted network. Calls carry trace context through the otelgrpc stats
// handler.
func ClientOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// Connect creates a client for addr and waits, for at most timeout, until
// the server reports service as SERVING. The connection is closed when the
// health check fails.
func Connect(ctx context.Context, addr, service string, timeout time.Duration, logf func(string, ...any), opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(opts) == 0 {
		opts = ClientOptions()
	}
	conn, err := gogrpc.NewClient(addr, opts...)
	if err != nil {
		return nil, &ConnectError{Stage: ConnectStageClient, Err: err}
	}

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := WaitForHealth(waitCtx, conn, service, logf); err != nil {
		_ = conn.Close()
		return nil, &ConnectError{Stage: ConnectStageHealth, Err: err}
	}
	return conn, nil
}
