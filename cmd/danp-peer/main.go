// Command danp-peer is the reference server side of the wire protocol,
// serving files from a local directory. It is a test/demo fixture, not a
// production file server — see internal/peer's package doc.
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/danp-project/danp-ftp/internal/logging"
	"github.com/danp-project/danp-ftp/internal/metrics"
	"github.com/danp-project/danp-ftp/internal/peer"
	"github.com/danp-project/danp-ftp/internal/protocol"
	"github.com/danp-project/danp-ftp/internal/transport"
)

func main() {
	addr := flag.String("addr", ":8021", "address to listen on")
	dir := flag.String("dir", ".", "directory to serve files from")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	logger := logging.NewLogrus(log)

	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheusCollector(reg)
	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			log.Fatal(http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	store := peer.NewDirStore(*dir)
	p := peer.New(store, protocol.MaxPayload(2048), peer.WithLogger(logger), peer.WithMetrics(collector))

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "danp-peer: %v\n", err)
		os.Exit(1)
	}
	log.Infof("danp-peer listening on %s, serving %s", *addr, *dir)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Warnf("accept failed: %v", err)
			continue
		}
		go func() {
			defer conn.Close()
			t := transport.NewTCPTransport(conn)
			if err := p.Serve(t); err != nil {
				log.Warnf("serve failed: %v", err)
			}
		}()
	}
}
