// Command danp-recv connects to a danp-ftp peer and receives a file,
// writing it to a local path.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danp-project/danp-ftp/internal/config"
	"github.com/danp-project/danp-ftp/internal/danpftp"
	"github.com/danp-project/danp-ftp/internal/logging"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8021", "peer address (host:port)")
	node := flag.Uint("node", 1, "destination node id")
	fileID := flag.String("id", "", "remote file identifier to request")
	out := flag.String("out", "", "local path to write (defaults to -id's base name)")
	timeoutMS := flag.Uint("timeout", 0, "per-packet timeout in milliseconds (0 = default)")
	retries := flag.Uint("retries", 0, "max retries per chunk (0 = default)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *fileID == "" {
		fmt.Fprintln(os.Stderr, "danp-recv: -id is required")
		os.Exit(2)
	}
	outPath := *out
	if outPath == "" {
		outPath = filepath.Base(*fileID)
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "danp-recv: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	session, err := danpftp.Init(*addr, uint16(*node), 5*time.Second, danpftp.WithLogger(logging.NewLogrus(log)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "danp-recv: connect: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	sink := func(offset int, payload []byte, more bool) error {
		_, err := f.Write(payload)
		return err
	}

	cfg := config.TransferConfig{
		FileID:     []byte(*fileID),
		TimeoutMS:  uint32(*timeoutMS),
		MaxRetries: uint8(*retries),
	}

	n, err := session.Receive(cfg, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "danp-recv: transfer failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("received %d bytes into %q\n", n, outPath)
}
