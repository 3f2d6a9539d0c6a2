package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// checkGRPCHealth dials the configured gRPC health endpoint and runs the
// standard health/v1 Check against it.
func checkGRPCHealth(ctx context.Context, target string) Check {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return Check{Name: "stt.grpc", Pass: false, Message: fmt.Sprintf("dial %s: %v", target, err)}
	}
	defer conn.Close()

	conn.Connect()
	if err := waitForReady(probeCtx, conn); err != nil {
		return Check{Name: "stt.grpc", Pass: false, Message: fmt.Sprintf("connect %s: %v", target, err)}
	}

	client := grpc_health_v1.NewHealthClient(conn)
	resp, err := client.Check(probeCtx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return Check{Name: "stt.grpc", Pass: false, Message: fmt.Sprintf("health check %s: %v", target, err)}
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return Check{Name: "stt.grpc", Pass: false, Message: fmt.Sprintf("%s reports %s", target, resp.GetStatus())}
	}

	return Check{Name: "stt.grpc", Pass: true, Message: fmt.Sprintf("%s is serving", target)}
}

// waitForReady blocks until the gRPC connection enters Ready or fails.
func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("grpc connection entered shutdown state")
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("grpc readiness wait timed out in state %s", state.String())
		}
	}
}
