// Package remote exposes the delegate state over the standard gRPC health
// service and announces the service port on UDP broadcasts, so that watchers
// on the local network can find a running app. It also provides the watcher
// side used by l2dwatch.
package remote

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/pawelkowalak/l2dview/delegate"
)

// ServiceName is the health service name reporting the delegate state. The
// empty service name reports the same status.
const ServiceName = "l2dview.Delegate"

// AnnounceInterval is how often the port is broadcast.
const AnnounceInterval = time.Second

// StatusServer reports SERVING while the delegate is running and
// NOT_SERVING otherwise.
type StatusServer struct {
	port          string
	broadcastPort string

	health *health.Server
	srv    *grpc.Server

	mu     sync.Mutex
	state  delegate.State
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStatusServer returns a server listening on port and broadcasting it to
// broadcastPort once started.
func NewStatusServer(port, broadcastPort string) *StatusServer {
	s := &StatusServer{
		port:          port,
		broadcastPort: broadcastPort,
		health:        health.NewServer(),
		srv:           grpc.NewServer(),
	}
	healthpb.RegisterHealthServer(s.srv, s.health)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// ObserveState follows delegate state changes. It matches the delegate's
// state observer signature.
func (s *StatusServer) ObserveState(from, to delegate.State) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if to == delegate.StateRunning {
		status = healthpb.HealthCheckResponse_SERVING
	}
	log.WithFields(log.Fields{
		"from":   from,
		"to":     to,
		"status": status,
	}).Debug("status changed")
	s.setStatus(status)
}

// State returns the last observed delegate state.
func (s *StatusServer) State() delegate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *StatusServer) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Start listens on the configured port, serves gRPC and broadcasts the port
// in the background until Stop. On error the server is stopped and can't be
// started again.
func (s *StatusServer) Start() error {
	lis, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		s.Stop()
		return fmt.Errorf("can't listen on port %s: %v", s.port, err)
	}
	c, err := net.ListenPacket("udp", ":0")
	if err != nil {
		lis.Close()
		s.Stop()
		return fmt.Errorf("can't open broadcast connection: %v", err)
	}
	broadcastAddr := "255.255.255.255:" + s.broadcastPort
	dst, err := net.ResolveUDPAddr("udp", broadcastAddr)
	if err != nil {
		lis.Close()
		c.Close()
		s.Stop()
		return fmt.Errorf("can't resolve broadcast address: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.Serve(lis); err != nil {
			log.Warnf("status server stopped: %v", err)
		}
	}()
	go func() {
		defer s.wg.Done()
		defer c.Close()
		log.Infof("Starting to broadcast our port %s on %s", s.port, broadcastAddr)
		Announce(ctx, c, dst, s.port, AnnounceInterval)
	}()
	return nil
}

// Serve serves the health service on lis until Stop.
func (s *StatusServer) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Stop marks every service NOT_SERVING, stops broadcasting and shuts the
// gRPC server down.
func (s *StatusServer) Stop() {
	s.health.Shutdown()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.srv.Stop()
	s.wg.Wait()
}

// Announce writes port to dst right away and then every interval until ctx
// is done. Write errors are logged and retried on the next tick.
func Announce(ctx context.Context, c net.PacketConn, dst net.Addr, port string, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if _, err := c.WriteTo([]byte(port), dst); err != nil {
			log.Warn(err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
