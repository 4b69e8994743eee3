// Package aae implements Active Anti-Entropy: the background gossip that
// reconciles replicas of the same collection across nodes using fingerprint
// comparisons and last-writer-wins timestamps, without ever going through
// the client protocol.
package aae

import "fmt"

// Endpoint is a host:port pair for one of a node's sockets.
type Endpoint struct {
	Addr string `json:"addr"`
	Port int    `json:"port"`
}

// String returns the endpoint in host:port form, suitable for net.Dial.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Addr, e.Port)
}

// NodeConfig names one node's two AAE-facing sockets.
type NodeConfig struct {
	SnapshotReceiver Endpoint `json:"snapshot_receiver"`
	DocumentReceiver Endpoint `json:"document_receiver"`
}

// Config describes a node's own AAE sockets and the neighbors it
// reconciles against.
type Config struct {
	Current   NodeConfig   `json:"current"`
	Neighbors []NodeConfig `json:"neighbors"`
}
