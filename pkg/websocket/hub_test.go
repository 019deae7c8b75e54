package websocket

import (
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestClient(role string) *Client {
	return &Client{
		send:   make(chan []byte, 1),
		UserID: primitive.NewObjectID(),
		Role:   role,
		rooms:  make(map[string]bool),
	}
}

func TestConcurrentSendsEvictFullClient(t *testing.T) {
	hub := NewHub()
	stalled := newTestClient("driver")
	hub.registerClient(stalled)

	// Fill the buffer so every further send hits the eviction path.
	hub.SendToUser(stalled.UserID, Message{Type: "booking_assigned"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.SendToUser(stalled.UserID, Message{Type: "booking_assigned"})
			hub.NotifyPoolUpdate(primitive.NewObjectID())
		}()
	}
	wg.Wait()

	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	if _, ok := hub.clients[stalled]; ok {
		t.Fatal("client with a full buffer was not evicted")
	}
	for roomID, room := range hub.rooms {
		if _, ok := room[stalled]; ok {
			t.Fatalf("evicted client still in room %q", roomID)
		}
	}
	if _, open := <-stalled.send; open {
		// The buffered message drains first; the channel must close after.
		if _, open := <-stalled.send; open {
			t.Fatal("evicted client's send channel left open")
		}
	}
}

func TestEvictedClientUnregistersCleanly(t *testing.T) {
	hub := NewHub()
	driver := newTestClient("driver")
	hub.registerClient(driver)

	hub.SendToUser(driver.UserID, Message{Type: "booking_assigned"})
	hub.SendToUser(driver.UserID, Message{Type: "booking_assigned"})

	// The read pump reports the dead connection afterwards; a second
	// close here would panic.
	hub.unregisterClient(driver)

	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	if len(hub.clients) != 0 {
		t.Fatalf("clients = %d, want none", len(hub.clients))
	}
}
