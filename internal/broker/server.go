// Package broker provides the JetStream connection used to publish kiosk
// events, either to an embedded in-process server or to a remote one.
package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/indirex/touchmeter/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"
)

// Options selects the broker.
type Options struct {
	URL           string // Remote server; empty starts an embedded one
	StoreDir      string // JetStream storage for the embedded server
	SubjectPrefix string // Defaults to "touchmeter"
}

// Broker owns the connection and, when embedded, the server.
type Broker struct {
	server *server.Server
	conn   *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	prefix string
}

// Open connects to the broker described by opts and ensures the event stream.
func Open(ctx context.Context, opts Options) (*Broker, error) {
	prefix := opts.SubjectPrefix
	if prefix == "" {
		prefix = "touchmeter"
	}
	b := &Broker{prefix: prefix}

	var err error
	if opts.URL == "" {
		b.server, err = StartEmbedded(opts.StoreDir)
		if err != nil {
			return nil, err
		}
		b.conn, err = ConnectInProcess(b.server)
	} else {
		b.conn, err = ConnectRemote(opts.URL)
	}
	if err != nil {
		_ = Shutdown(nil, b.server)
		return nil, err
	}

	b.js, err = jetstream.New(b.conn)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}

	b.stream, err = SetupStream(ctx, b.js, prefix)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("setting up stream: %w", err)
	}
	return b, nil
}

// JetStream returns the JetStream context.
func (b *Broker) JetStream() jetstream.JetStream { return b.js }

// Stream returns the event stream.
func (b *Broker) Stream() jetstream.Stream { return b.stream }

// Prefix returns the subject prefix.
func (b *Broker) Prefix() string { return b.prefix }

// Embedded reports whether the broker runs in-process.
func (b *Broker) Embedded() bool { return b.server != nil }

// Close drains the connection and stops the embedded server.
func (b *Broker) Close() error {
	return Shutdown(b.conn, b.server)
}

// StartEmbedded starts an in-process NATS server with JetStream enabled,
// storing data under storeDir. It opens no network ports.
func StartEmbedded(storeDir string) (*server.Server, error) {
	logger.Debug("Starting embedded NATS server with store dir: %s", storeDir)

	opts := &server.Options{
		JetStream:  true,
		StoreDir:   storeDir,
		DontListen: true,
		NoSigs:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		logger.Error("Failed to create NATS server: %v", err)
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		logger.Error("NATS server failed to start within 4s timeout")
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}

	logger.Debug("NATS server ready for connections")
	return ns, nil
}

// ConnectInProcess opens a connection that talks to ns without sockets.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	conn, err := nats.Connect("", nats.InProcessServer(ns), nats.Name(clientName()))
	if err != nil {
		logger.Error("Failed to connect to NATS in-process: %v", err)
		return nil, fmt.Errorf("connecting in-process: %w", err)
	}
	return conn, nil
}

// ConnectRemote connects to url, reconnecting indefinitely.
func ConnectRemote(url string) (*nats.Conn, error) {
	logger.Debug("Connecting to NATS at %s", url)
	conn, err := nats.Connect(url,
		nats.Name(clientName()),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		logger.Error("Failed to connect to NATS at %s: %v", url, err)
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return conn, nil
}

func clientName() string {
	return "touchmeter-" + xid.New().String()
}

// Shutdown drains nc and stops ns. Either may be nil.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		drainDone := make(chan error, 1)
		go func() {
			drainDone <- nc.Drain()
		}()

		select {
		case err := <-drainDone:
			if err != nil {
				logger.Warn("NATS drain failed, forcing close: %v", err)
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			logger.Warn("NATS drain timed out after 2s, forcing close")
			nc.Close()
		}
	}

	if ns != nil {
		ns.Shutdown()

		shutdownDone := make(chan struct{})
		go func() {
			ns.WaitForShutdown()
			close(shutdownDone)
		}()

		select {
		case <-shutdownDone:
			logger.Debug("NATS server shut down cleanly")
		case <-time.After(5 * time.Second):
			logger.Error("NATS server shutdown timed out after 5s")
			return errors.New("nats server shutdown timed out")
		}
	}
	return nil
}
