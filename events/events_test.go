package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// testEvent is a simple event type used to exercise the emitter.
type testEvent struct {
	value int
}

// TestEventEmitter will test that published events reach every subscribed handler in subscription order.
func TestEventEmitter(t *testing.T) {
	emitter := EventEmitter[testEvent]{}

	// Subscribe two handlers which record the values they observe.
	var observed []int
	emitter.Subscribe(func(event testEvent) {
		observed = append(observed, event.value)
	})
	emitter.Subscribe(func(event testEvent) {
		observed = append(observed, event.value*10)
	})

	// Publish two events and verify ordering.
	emitter.Publish(testEvent{value: 1})
	emitter.Publish(testEvent{value: 2})
	assert.Equal(t, []int{1, 10, 2, 20}, observed)
}

// TestEventEmitterNoSubscribers will test that publishing with no subscribers is a no-op.
func TestEventEmitterNoSubscribers(t *testing.T) {
	emitter := EventEmitter[testEvent]{}
	assert.NotPanics(t, func() {
		emitter.Publish(testEvent{value: 3})
	})
}
