package aae

import (
	"testing"
	"time"

	"github.com/autumndb/autumndb/internal/engine"
	"github.com/autumndb/autumndb/internal/eventbus"
	"github.com/autumndb/autumndb/internal/storefs"
)

func Test_Broadcaster_Pushes_New_Document_To_Neighbor(t *testing.T) {
	sourceCore := newTestCore(t)
	sourceEngine := engine.New(sourceCore, eventbus.New())
	go sourceEngine.Run()
	defer sourceEngine.Stop()

	targetCore, err := engine.NewCore(storefs.NewMem(), "/db")
	if err != nil {
		t.Fatalf("new core: %v", err)
	}

	targetReceiver, err := NewReceiver(Endpoint{Addr: "127.0.0.1", Port: 0}, targetCore)
	if err != nil {
		t.Fatalf("new receiver: %v", err)
	}
	defer targetReceiver.Close()

	go targetReceiver.Run()
	defer targetReceiver.Stop()

	neighbor := NodeConfig{DocumentReceiver: tcpEndpointOf(t, targetReceiver.listener)}

	broadcaster := NewBroadcaster(sourceEngine, []NodeConfig{neighbor})
	go broadcaster.Run()
	defer broadcaster.Stop()

	id, errCh := sourceEngine.SubmitCreate("people", []byte(`{"v":1}`))
	if err := <-errCh; err != nil {
		t.Fatalf("create: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		coll, err := targetCore.GetOrCreateCollection("people")
		if err == nil {
			if exists, _ := coll.DocumentExists(id); exists {
				return
			}
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("document was not pushed to neighbor within deadline")
}
