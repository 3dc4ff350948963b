package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vinpro/dealdesk/internal/event"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := New(8)

	var mu sync.Mutex
	got := map[string]int{}
	var wg sync.WaitGroup
	wg.Add(2)

	for _, name := range []string{"first", "second"} {
		name := name
		bus.Subscribe(name, HandlerFunc(func(_ context.Context, evt event.DomainEvent) error {
			mu.Lock()
			got[name]++
			mu.Unlock()
			wg.Done()
			return nil
		}))
	}
	bus.Start(ctx)

	bus.Publish(ctx, event.NewLeadCaptured("desk", event.LeadCapturedPayload{
		CustomerID: "c-1", FirstName: "Ada", LastName: "Byron", Source: "dl_scan",
	}))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscribers did not receive the event")
	}

	mu.Lock()
	defer mu.Unlock()
	if got["first"] != 1 || got["second"] != 1 {
		t.Errorf("deliveries = %v, want one per subscriber", got)
	}
}

func TestBus_FullBufferDropsWithoutBlocking(t *testing.T) {
	// No consumer started: the buffer fills and further publishes must
	// return immediately instead of blocking the caller.
	bus := New(1)
	ctx := context.Background()

	evt := event.NewUnitAdded("desk", event.UnitAddedPayload{VehicleID: "v-1", VIN: "1HGCM82633A004352"})
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(ctx, evt)
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
}

func TestBus_DrainsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := New(16)

	var mu sync.Mutex
	count := 0
	bus.Subscribe("counter", HandlerFunc(func(_ context.Context, _ event.DomainEvent) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}))

	evt := event.NewUnitAdded("desk", event.UnitAddedPayload{VehicleID: "v-2"})
	for i := 0; i < 5; i++ {
		bus.Publish(ctx, evt)
	}

	bus.Start(ctx)
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := count
		mu.Unlock()
		if n == 5 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("processed %d events before shutdown, want 5", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
