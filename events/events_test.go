package events

import "testing"

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.Subscribe(func(Event) { order = append(order, 1) })
	bus.Subscribe(func(Event) { order = append(order, 2) })

	bus.Publish(TaskFinished{UnitID: 7, Task: "enter_garrison"})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected delivery order [1 2], got %v", order)
	}
}

func TestBus_NilBusDropsEvents(t *testing.T) {
	var bus *Bus
	// Must not panic.
	bus.Publish(UnitSpawned{UnitID: 1, Template: "mine"})
}

func TestBus_TypedEventsRoundTrip(t *testing.T) {
	bus := NewBus()
	var got Event
	bus.Subscribe(func(e Event) { got = e })

	bus.Publish(ResourceDeposited{UnitID: 3, Owner: 1, Resource: "gold", Quantity: 10})

	dep, ok := got.(ResourceDeposited)
	if !ok {
		t.Fatalf("expected ResourceDeposited, got %T", got)
	}
	if dep.Quantity != 10 || dep.Resource != "gold" {
		t.Errorf("unexpected payload: %+v", dep)
	}
}
