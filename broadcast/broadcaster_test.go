package broadcast

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func testBroadcaster() *Broadcaster {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewBroadcaster(log)
}

func TestPublishFansOut(t *testing.T) {
	b := testBroadcaster()
	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	if b.ClientCount() != 2 {
		t.Fatalf("ClientCount = %d, want 2", b.ClientCount())
	}

	b.Publish(Event{Type: EventCreated, ID: 42})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != EventCreated || ev.ID != 42 {
				t.Errorf("client %d got %+v", i, ev)
			}
		default:
			t.Errorf("client %d received nothing", i)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := testBroadcaster()
	id, ch := b.Subscribe()

	b.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Error("channel should be closed after Unsubscribe")
	}
	if b.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", b.ClientCount())
	}

	// A second call for the same id must be a no-op.
	b.Unsubscribe(id)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	b := testBroadcaster()
	_, ch := b.Subscribe()

	for i := 0; i < clientBufferSize+5; i++ {
		b.Publish(Event{Type: EventUpdated, ID: i})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received != clientBufferSize {
		t.Errorf("received %d events, want %d", received, clientBufferSize)
	}
}

func TestCloseClosesAllChannels(t *testing.T) {
	b := testBroadcaster()
	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	b.Close()

	for i, ch := range []<-chan Event{ch1, ch2} {
		if _, open := <-ch; open {
			t.Errorf("client %d channel still open after Close", i)
		}
	}
	if b.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", b.ClientCount())
	}
}

func TestEventEncode(t *testing.T) {
	data := Event{Type: EventDeleted, ID: 9}.Encode()

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != EventDeleted {
		t.Errorf("type = %v", decoded["type"])
	}
	if decoded["id"] != float64(9) {
		t.Errorf("id = %v", decoded["id"])
	}
	if _, ok := decoded["location"]; ok {
		t.Error("empty payload should be omitted")
	}
}
