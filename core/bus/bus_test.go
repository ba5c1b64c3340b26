package bus

import (
	"testing"
)

func TestPublishDeliversInOrder(t *testing.T) {
	b := New()

	var order []int
	b.Subscribe("topic", func(payload interface{}) { order = append(order, 1) })
	b.Subscribe("topic", func(payload interface{}) { order = append(order, 2) })
	b.Subscribe("topic", func(payload interface{}) { order = append(order, 3) })

	b.Publish("topic", "payload")

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v, want [1 2 3]", order)
	}
}

func TestPublishNoSubscribersIsNoop(t *testing.T) {
	b := New()
	// Must not panic.
	b.Publish("empty", 42)
}

func TestTopicsAreIsolated(t *testing.T) {
	b := New()

	got := 0
	b.Subscribe("a", func(payload interface{}) { got++ })
	b.Publish("b", nil)

	if got != 0 {
		t.Error("subscriber received a payload from another topic")
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	got := 0
	unsub := b.Subscribe("topic", func(payload interface{}) { got++ })
	b.Publish("topic", nil)
	unsub()
	b.Publish("topic", nil)
	unsub() // second call is harmless

	if got != 1 {
		t.Errorf("handler called %d times, want 1", got)
	}
	if b.SubscriberCount("topic") != 0 {
		t.Error("unsubscribe did not remove the handler")
	}
}

func TestPanickingSubscriberDoesNotStopDelivery(t *testing.T) {
	b := New()

	delivered := false
	b.Subscribe("topic", func(payload interface{}) { panic("bad consumer") })
	b.Subscribe("topic", func(payload interface{}) { delivered = true })

	b.Publish("topic", nil)

	if !delivered {
		t.Error("a panicking subscriber must not block later subscribers")
	}
}

func TestPayloadPassedThrough(t *testing.T) {
	b := New()

	var got interface{}
	b.Subscribe("topic", func(payload interface{}) { got = payload })

	want := map[string]string{"calculator": "concrete"}
	b.Publish("topic", want)

	m, ok := got.(map[string]string)
	if !ok || m["calculator"] != "concrete" {
		t.Errorf("payload = %v, want %v", got, want)
	}
}
