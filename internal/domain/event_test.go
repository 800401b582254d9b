package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventStatusIsValid(t *testing.T) {
	assert.True(t, EventStatusDraft.IsValid())
	assert.True(t, EventStatusPublished.IsValid())
	assert.True(t, EventStatusCanceled.IsValid())
	assert.False(t, EventStatus("archived").IsValid())
	assert.False(t, EventStatus("").IsValid())
}

func TestEventIsPublished(t *testing.T) {
	assert.True(t, (&Event{Status: EventStatusPublished}).IsPublished())
	assert.False(t, (&Event{Status: EventStatusDraft}).IsPublished())
	assert.False(t, (&Event{Status: EventStatusCanceled}).IsPublished())
}

func TestEventSoldOut(t *testing.T) {
	assert.False(t, (&Event{AvailableTickets: 1}).SoldOut())
	assert.True(t, (&Event{AvailableTickets: 0}).SoldOut())
	assert.True(t, (&Event{AvailableTickets: -1}).SoldOut())
}
