package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	b := NewBus()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)
	defer b.Unsubscribe(ch2)

	b.Publish()

	assert.Len(t, ch1, 1)
	assert.Len(t, ch2, 1)
}

func TestBus_SignalsCoalesce(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish()
	b.Publish()
	b.Publish()

	// Undrained signals collapse into a single pending one.
	assert.Len(t, ch, 1)
	<-ch
	select {
	case <-ch:
		t.Fatal("expected no further signal")
	default:
	}
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	// Publish after unsubscribe must not panic on the closed channel.
	b.Publish()

	_, open := <-ch
	assert.False(t, open)
}
