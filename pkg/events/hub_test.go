package events

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestPublishOrder(t *testing.T) {
	hub := NewHub[int](nil)
	var got []string
	for _, name := range []string{"first", "second", "third"} {
		if _, err := hub.Subscribe("changed", func(topic string, args []int) error {
			got = append(got, name)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := hub.Publish("changed", 1, 2)
	if err != nil || n != 3 {
		t.Fatalf("Publish = %d, %v", n, err)
	}
	if want := []string{"first", "second", "third"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if n, _ := hub.Publish("other"); n != 0 {
		t.Errorf("unrelated topic called %d handlers", n)
	}
}

func TestPublishArguments(t *testing.T) {
	hub := NewHub[string](nil)
	var topic string
	var args []string
	hub.Subscribe("file.opened", func(tp string, a []string) error {
		topic, args = tp, a
		return nil
	})
	hub.Publish("file.opened", "/tmp/a.wav", "sound")
	if topic != "file.opened" || !reflect.DeepEqual(args, []string{"/tmp/a.wav", "sound"}) {
		t.Errorf("handler saw %q %v", topic, args)
	}
}

func TestUnsubscribe(t *testing.T) {
	hub := NewHub[int](nil)
	calls := 0
	id, _ := hub.Subscribe("t", func(string, []int) error { calls++; return nil })
	if tp, ok := hub.Topic(id); !ok || tp != "t" {
		t.Errorf("Topic(%s) = %q, %v", id, tp, ok)
	}
	if !hub.Unsubscribe(id) {
		t.Fatal("Unsubscribe failed")
	}
	if hub.Unsubscribe(id) {
		t.Error("second Unsubscribe should fail")
	}
	hub.Publish("t")
	if calls != 0 || hub.Count("t") != 0 {
		t.Errorf("calls=%d count=%d after unsubscribe", calls, hub.Count("t"))
	}
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	hub := NewHub[int](nil)
	var second string
	calls := 0
	hub.Subscribe("t", func(string, []int) error {
		calls++
		hub.Unsubscribe(second)
		return nil
	})
	second, _ = hub.Subscribe("t", func(string, []int) error { calls++; return nil })
	n, _ := hub.Publish("t")
	if n != 1 || calls != 1 {
		t.Errorf("n=%d calls=%d, want the removed handler skipped", n, calls)
	}
}

func TestUnsubscribeRelease(t *testing.T) {
	hub := NewHub[int](nil)
	released := 0
	id, err := hub.SubscribeWithRelease("t", func(string, []int) error { return nil }, func() {
		released++
		// The hub's lock is not held while the hook runs.
		if hub.Count("t") != 0 {
			t.Error("subscription still listed during release")
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if !hub.Unsubscribe(id) || hub.Unsubscribe(id) {
		t.Error("Unsubscribe results wrong")
	}
	if released != 1 {
		t.Errorf("release ran %d times, want 1", released)
	}

	if _, err := hub.SubscribeWithRelease("", func(string, []int) error { return nil }, func() { released++ }); err != ErrEmptyTopic {
		t.Errorf("empty topic err = %v", err)
	}
	if released != 1 {
		t.Error("release ran for a rejected subscription")
	}
}

func TestPublishStopsAtError(t *testing.T) {
	hub := NewHub[int](nil)
	boom := errors.New("boom")
	later := false
	hub.Subscribe("t", func(string, []int) error { return boom })
	hub.Subscribe("t", func(string, []int) error { later = true; return nil })
	n, err := hub.Publish("t")
	if !errors.Is(err, boom) || n != 1 || later {
		t.Errorf("n=%d err=%v later=%v", n, err, later)
	}
}

func TestSubscribeValidation(t *testing.T) {
	hub := NewHub[int](nil)
	if _, err := hub.Subscribe("", func(string, []int) error { return nil }); !errors.Is(err, ErrEmptyTopic) {
		t.Errorf("empty topic err = %v", err)
	}
	if _, err := hub.Subscribe("t", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("nil handler err = %v", err)
	}
}

func TestConcurrentSubscribe(t *testing.T) {
	hub := NewHub[int](nil)
	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], _ = hub.Subscribe("t", func(string, []int) error { return nil })
		}(i)
	}
	wg.Wait()
	if hub.Count("t") != 50 {
		t.Errorf("Count = %d", hub.Count("t"))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
