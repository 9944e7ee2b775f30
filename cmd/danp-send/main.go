// Command danp-send connects to a danp-ftp peer and transmits a local
// file, grounded on the teacher's cmd/cli-client/main.go flag-parsing and
// callback-wiring style.
package main

import (
	"flag"
	"fmt"
	"io"
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
	file := flag.String("file", "", "local file to send")
	fileID := flag.String("id", "", "remote file identifier (defaults to -file's base name)")
	chunkSize := flag.Uint("chunk", 0, "chunk size in bytes (0 = default)")
	timeoutMS := flag.Uint("timeout", 0, "per-packet timeout in milliseconds (0 = default)")
	retries := flag.Uint("retries", 0, "max retries per chunk (0 = default)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "danp-send: -file is required")
		os.Exit(2)
	}
	id := *fileID
	if id == "" {
		id = filepath.Base(*file)
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "danp-send: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	session, err := danpftp.Init(*addr, uint16(*node), 5*time.Second, danpftp.WithLogger(logging.NewLogrus(log)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "danp-send: connect: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	var peeked [1]byte
	havePeek := false
	source := func(offset int, buf []byte, more *bool) (int, error) {
		n := 0
		if havePeek {
			buf[0] = peeked[0]
			n = 1
			havePeek = false
		}
		m, err := f.Read(buf[n:])
		n += m
		if err != nil && err != io.EOF {
			return 0, err
		}

		pm, perr := f.Read(peeked[:])
		if pm == 1 {
			havePeek = true
			*more = true
		} else if perr != nil || pm == 0 {
			*more = false
		}
		return n, nil
	}

	cfg := config.TransferConfig{
		FileID:     []byte(id),
		ChunkSize:  uint16(*chunkSize),
		TimeoutMS:  uint32(*timeoutMS),
		MaxRetries: uint8(*retries),
	}

	n, err := session.Transmit(cfg, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "danp-send: transfer failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("sent %d bytes as %q\n", n, id)
}
