// Package node wires together one autumndb process: the operation engine,
// the three AAE activities, and the client-facing TCP endpoint, all sharing
// one storage root and one event bus.
package node

import (
	"fmt"

	"github.com/autumndb/autumndb/internal/aae"
	"github.com/autumndb/autumndb/internal/config"
	"github.com/autumndb/autumndb/internal/engine"
	"github.com/autumndb/autumndb/internal/eventbus"
	"github.com/autumndb/autumndb/internal/obslog"
	"github.com/autumndb/autumndb/internal/server"
	"github.com/autumndb/autumndb/internal/storefs"
)

// Node owns every long-running worker of one autumndb process: the
// operation engine, the AAE snapshot responder/document receiver/
// broadcaster, and the client acceptor. Each runs on its own goroutine,
// per spec.md §5.
type Node struct {
	core        *engine.Core
	engine      *engine.Engine
	responder   *aae.Responder
	receiver    *aae.Receiver
	broadcaster *aae.Broadcaster
	server      *server.Server
}

// New constructs a Node's listeners and sockets without starting any
// goroutines yet; call Run to start serving.
func New(cfg config.Config) (*Node, error) {
	core, err := engine.NewCore(storefs.NewReal(), cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("node: new core: %w", err)
	}

	eng := engine.New(core, eventbus.New())

	responder, err := aae.NewResponder(cfg.Current.SnapshotReceiver, core)
	if err != nil {
		return nil, fmt.Errorf("node: snapshot responder: %w", err)
	}

	receiver, err := aae.NewReceiver(cfg.Current.DocumentReceiver, core)
	if err != nil {
		responder.Close()
		return nil, fmt.Errorf("node: document receiver: %w", err)
	}

	broadcaster := aae.NewBroadcaster(eng, cfg.Neighbors)

	srv, err := server.New(cfg.Client.String(), eng, core)
	if err != nil {
		responder.Close()
		receiver.Close()

		return nil, fmt.Errorf("node: client endpoint: %w", err)
	}

	return &Node{
		core:        core,
		engine:      eng,
		responder:   responder,
		receiver:    receiver,
		broadcaster: broadcaster,
		server:      srv,
	}, nil
}

// Run starts every worker goroutine and blocks until the client acceptor's
// listener is closed by Stop.
func (n *Node) Run() error {
	logger := obslog.WithComponent("node")

	go n.engine.Run()
	go n.responder.Run()
	go n.receiver.Run()
	go n.broadcaster.Run()

	logger.Info().
		Str("client_addr", n.server.Addr().String()).
		Msg("node listening")

	return n.server.Run()
}

// Stop shuts down every worker and closes every socket.
func (n *Node) Stop() {
	n.server.Close()
	n.responder.Stop()
	n.responder.Close()
	n.receiver.Stop()
	n.receiver.Close()
	n.broadcaster.Stop()
	n.engine.Stop()
}

// Engine exposes the node's operation engine, e.g. for an in-process
// driver used by tests.
func (n *Node) Engine() *engine.Engine { return n.engine }

// Core exposes the node's collection registry.
func (n *Node) Core() *engine.Core { return n.core }

// ClientAddr returns the address the client endpoint is bound to.
func (n *Node) ClientAddr() string { return n.server.Addr().String() }
