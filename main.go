// Command server runs a small, single-node IRC server.
package main

import (
	"crypto/tls"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

func main() {
	log.SetFlags(0)
	rand.Seed(time.Now().UnixNano())

	args, err := getArgs()
	if err != nil {
		printUsage(err)
		os.Exit(1)
	}

	config, err := loadConfig(args.ConfigFile)
	if err != nil {
		log.Fatalf("unable to load configuration: %s", err)
	}

	if args.ServerName != "" {
		config.ServerName = args.ServerName
	}

	server := NewServer(config, args.ConfigFile)

	listeners, err := openListeners(config)
	if err != nil {
		log.Fatalf("unable to open listeners: %s", err)
	}

	go watchSignals(server)

	if err := server.start(listeners); err != nil {
		log.Fatalf("server error: %s", err)
	}

	log.Printf("server shut down cleanly")
}

// openListeners opens the plaintext listener and, if configured, the TLS
// listener.
func openListeners(config Config) ([]net.Listener, error) {
	var listeners []net.Listener

	plainAddr := fmt.Sprintf("%s:%s", config.ListenHost, config.ListenPort)
	plainLn, err := net.Listen("tcp", plainAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to listen on %s", plainAddr)
	}
	log.Printf("listening on %s", plainAddr)
	listeners = append(listeners, plainLn)

	if config.TLSListenPort == "" {
		return listeners, nil
	}

	cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load TLS certificate")
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	tlsAddr := fmt.Sprintf("%s:%s", config.ListenHost, config.TLSListenPort)
	tlsLn, err := tls.Listen("tcp", tlsAddr, tlsConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to listen (TLS) on %s", tlsAddr)
	}
	log.Printf("listening (TLS) on %s", tlsAddr)
	listeners = append(listeners, tlsLn)

	return listeners, nil
}

// watchSignals translates SIGHUP into a rehash and SIGINT/SIGTERM into a
// clean shutdown.
func watchSignals(s *Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	for sig := range sigChan {
		switch sig {
		case syscall.SIGHUP:
			log.Printf("received SIGHUP, rehashing")
			s.newEvent(Event{Type: RehashEvent})
		case syscall.SIGINT, syscall.SIGTERM:
			log.Printf("received %s, shutting down", sig)
			s.newEvent(Event{Type: ShutdownEvent})
			return
		}
	}
}
