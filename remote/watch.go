package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Discover listens for port broadcasts on addr, such as ":8032", and
// returns the gRPC target of the first app it hears. It blocks until an
// announcement arrives or ctx is done.
func Discover(ctx context.Context, addr string) (string, error) {
	c, err := net.ListenPacket("udp", addr)
	if err != nil {
		return "", fmt.Errorf("can't listen for broadcasts: %v", err)
	}
	defer c.Close()
	return ReadAnnouncement(ctx, c)
}

// ReadAnnouncement reads one port broadcast from c and joins it with the
// sender's host.
func ReadAnnouncement(ctx context.Context, c net.PacketConn) (string, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	port := make([]byte, 512)
	n, peer, err := c.ReadFrom(port)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("can't read port broadcast: %v", err)
	}
	log.Infof("Received port broadcast from %s", peer)
	host, _, err := net.SplitHostPort(peer.String())
	if err != nil {
		return "", fmt.Errorf("can't parse peer IP address %v", err)
	}
	if n == 0 {
		return "", errors.New("empty port broadcast")
	}
	return net.JoinHostPort(host, string(port[:n])), nil
}

// Watch streams the serving status of service at target to fn until the
// stream ends or ctx is done.
func Watch(ctx context.Context, target, service string, fn func(healthpb.HealthCheckResponse_ServingStatus), opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return fmt.Errorf("did not connect: %v", err)
	}
	defer conn.Close()

	cli := healthpb.NewHealthClient(conn)
	stream, err := cli.Watch(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return fmt.Errorf("can't watch %s: %v", target, err)
	}
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("can't receive status: %v", err)
		}
		fn(resp.GetStatus())
	}
}
