package node

import (
	"net"
	"testing"
	"time"

	"github.com/autumndb/autumndb/internal/aae"
	"github.com/autumndb/autumndb/internal/config"
	"github.com/autumndb/autumndb/pkg/driver"
)

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	return config.Config{
		Config: aae.Config{
			Current: aae.NodeConfig{
				SnapshotReceiver: aae.Endpoint{Addr: "127.0.0.1", Port: freePort(t)},
				DocumentReceiver: aae.Endpoint{Addr: "127.0.0.1", Port: freePort(t)},
			},
		},
		Client:  aae.Endpoint{Addr: "127.0.0.1", Port: freePort(t)},
		DataDir: t.TempDir(),
	}
}

func Test_Node_Serves_Client_Requests_End_To_End(t *testing.T) {
	cfg := testConfig(t)

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	go n.Run()
	defer n.Stop()

	waitForListener(t, n.ClientAddr())

	client := driver.New(n.ClientAddr())

	id, err := client.CreateDocument("people", []byte(`{"name":"ada"}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := client.ReadDocument("people", id)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(got) != `{"name":"ada"}` {
		t.Fatalf("got=%q", got)
	}
}

func waitForListener(t *testing.T, addr string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("listener at %s never came up", addr)
}
