// Command l2dwatch finds an l2dview app on the local network and prints its
// delegate status changes.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/pawelkowalak/l2dview/logging"
	"github.com/pawelkowalak/l2dview/remote"
)

var (
	target        = flag.String("target", "", "app address host:port, discovered over UDP when empty")
	broadcastPort = flag.String("broadcast-port", "8032", "UDP port to listen for app broadcasts on")
	service       = flag.String("service", remote.ServiceName, "health service name to watch")
	timeout       = flag.Duration("discover-timeout", 30*time.Second, "how long to wait for a broadcast")
	logLevel      = flag.String("log-level", "info", "log level")
)

func main() {
	flag.Parse()
	if err := logging.Setup(os.Stderr, *logLevel); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	addr := *target
	if addr == "" {
		dctx, cancel := context.WithTimeout(ctx, *timeout)
		var err error
		addr, err = remote.Discover(dctx, ":"+*broadcastPort)
		cancel()
		if err != nil {
			log.Fatalf("can't discover app: %v", err)
		}
	}

	log.WithField("target", addr).Info("Watching")
	err := remote.Watch(ctx, addr, *service, func(st healthpb.HealthCheckResponse_ServingStatus) {
		log.WithFields(log.Fields{
			"target": addr,
			"status": st,
		}).Info("Status")
	})
	if err != nil {
		log.Fatal(err)
	}
}
